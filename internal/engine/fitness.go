package engine

import (
	"math"
	"sort"
)

const (
	weightGap     = 0.08
	weightBalance = 40.0
	freeDayBonus  = -20.0
)

// Score computes the soft-constraint quality of a set of sections. Lower
// is better. It is pure, deterministic, and independent of the input
// slice's order: every term is computed from per-day groupings that are
// sorted before use.
func Score(sections []Section) float64 {
	perDay := make([][]TimeSlot, 7)
	for _, sec := range sections {
		for _, ts := range sec.TimeSlots {
			perDay[ts.Day] = append(perDay[ts.Day], ts)
		}
	}

	score := gapsPenalty(perDay) + dayBalancePenalty(perDay) + timeOfDayPenalty(perDay) + freeDaysBonus(perDay)
	return score
}

func gapsPenalty(perDay [][]TimeSlot) float64 {
	var idleMinutes int
	for _, slots := range perDay {
		if len(slots) < 2 {
			continue
		}
		sorted := append([]TimeSlot(nil), slots...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
		for i := 1; i < len(sorted); i++ {
			gap := sorted[i].Start - sorted[i-1].End
			if gap > 0 {
				idleMinutes += gap
			}
		}
	}
	return float64(idleMinutes) * weightGap
}

func dayBalancePenalty(perDay [][]TimeSlot) float64 {
	counts := make([]float64, len(perDay))
	var sum float64
	for i, slots := range perDay {
		counts[i] = float64(len(slots))
		sum += counts[i]
	}
	mean := sum / float64(len(counts))

	var variance float64
	for _, c := range counts {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(counts))

	return math.Sqrt(variance) * weightBalance
}

func timeOfDayPenalty(perDay [][]TimeSlot) float64 {
	var penalty float64
	for _, slots := range perDay {
		for _, ts := range slots {
			h := ts.Start / 60
			switch {
			case h < 7:
				penalty += 20
			case h > 18:
				penalty += 10
			case h >= 7 && h < 8:
				penalty += 5
			case h > 17 && h <= 18:
				penalty += 3
			}
		}
	}
	return penalty
}

func freeDaysBonus(perDay [][]TimeSlot) float64 {
	var freeDays int
	for _, slots := range perDay {
		if len(slots) == 0 {
			freeDays++
		}
	}
	return float64(freeDays) * freeDayBonus
}
