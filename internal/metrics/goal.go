// ABOUTME: Weight goal derivations: progress toward target and remaining delta.
// ABOUTME: Absent operands are "unknown", never a computed zero.
package metrics

import (
	"math"

	"github.com/harperreed/wellness/internal/models"
)

// GoalProgress is the percentage of the distance from start to target already
// covered by current, clamped to [0, 100]. Absent operands or start == target
// yield 0.
func GoalProgress(start, current, target *float64) float64 {
	if start == nil || current == nil || target == nil {
		return 0
	}
	span := math.Abs(*start - *target)
	if span == 0 {
		return 0
	}
	remaining := math.Abs(*current - *target)
	return clamp((span-remaining)/span*100, 0, 100)
}

// WeightDelta is the absolute distance between current and target.
// ok is false when either operand is unknown.
func WeightDelta(current, target *float64) (delta float64, ok bool) {
	if current == nil || target == nil {
		return 0, false
	}
	return math.Abs(*current - *target), true
}

// LatestWeight returns the most recent weight, or nil when there are no logs.
func LatestWeight(logs []*models.WeightLog) *float64 {
	var latest *models.WeightLog
	for _, w := range logs {
		if latest == nil || w.RecordedAt.After(latest.RecordedAt) {
			latest = w
		}
	}
	if latest == nil {
		return nil
	}
	return models.Float(latest.Weight)
}

// EarliestWeight returns the oldest weight, or nil when there are no logs.
func EarliestWeight(logs []*models.WeightLog) *float64 {
	var earliest *models.WeightLog
	for _, w := range logs {
		if earliest == nil || w.RecordedAt.Before(earliest.RecordedAt) {
			earliest = w
		}
	}
	if earliest == nil {
		return nil
	}
	return models.Float(earliest.Weight)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
