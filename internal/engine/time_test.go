package engine

import "testing"

func TestTimeSlotOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b TimeSlot
		want bool
	}{
		{"same day overlap", slot(0, 480, 600), slot(0, 540, 660), true},
		{"same day adjacent no overlap", slot(0, 480, 600), slot(0, 600, 720), false},
		{"same day disjoint", slot(0, 480, 600), slot(0, 700, 800), false},
		{"different day never overlaps", slot(0, 480, 600), slot(1, 480, 600), false},
		{"fully contained", slot(0, 480, 720), slot(0, 500, 520), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.a.Overlaps(c.b); got != c.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
			if got := c.b.Overlaps(c.a); got != c.want {
				t.Errorf("Overlaps is not symmetric for %v, %v", c.a, c.b)
			}
		})
	}
}
