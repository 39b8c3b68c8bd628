package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_GapsAndFreeDaysAndBalance(t *testing.T) {
	sections := []Section{
		section("s1", "S1", "P1", "R1", 30, 0, slot(0, 8*60, 10*60)),
		section("s2", "S2", "P2", "R2", 30, 0, slot(0, 10*60, 12*60)),
	}
	// Zero gap (back-to-back), all on Monday: 2 classes one day, 6 free
	// days, no early/late penalty.
	got := Score(sections)
	wantBalance := math.Sqrt(varianceOf([]float64{2, 0, 0, 0, 0, 0, 0})) * weightBalance
	want := 0 /*gaps*/ + wantBalance + 0 /*time-of-day*/ + 6*freeDayBonus
	assert.InDelta(t, want, got, 1e-9)
}

func TestScore_DeterministicRegardlessOfInputOrder(t *testing.T) {
	a := []Section{
		section("s1", "S1", "P1", "R1", 30, 0, slot(0, 8*60, 10*60)),
		section("s2", "S2", "P2", "R2", 30, 0, slot(2, 9*60, 11*60)),
	}
	b := []Section{a[1], a[0]}
	assert.Equal(t, Score(a), Score(b))
}

func TestScore_GapPenaltyWeighting(t *testing.T) {
	sections := []Section{
		section("s1", "S1", "P1", "R1", 30, 0, slot(0, 8*60, 10*60)),
		section("s2", "S2", "P2", "R2", 30, 0, slot(0, 12*60, 14*60)),
	}
	got := Score(sections)
	gapMinutes := 12*60 - 10*60
	wantGap := float64(gapMinutes) * weightGap
	wantBalance := math.Sqrt(varianceOf([]float64{2, 0, 0, 0, 0, 0, 0})) * weightBalance
	want := wantGap + wantBalance + 6*freeDayBonus
	assert.InDelta(t, want, got, 1e-9)
}

func varianceOf(counts []float64) float64 {
	var sum float64
	for _, c := range counts {
		sum += c
	}
	mean := sum / float64(len(counts))
	var variance float64
	for _, c := range counts {
		d := c - mean
		variance += d * d
	}
	return variance / float64(len(counts))
}
