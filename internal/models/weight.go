// ABOUTME: WeightLog model for body weight entries.
// ABOUTME: Weights are stored in kilograms.
package models

import "time"

// WeightLog is a single body weight measurement.
type WeightLog struct {
	LogMeta `yaml:",inline"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// NewWeightLog creates an unsaved weight entry; the store assigns ID and timestamp.
func NewWeightLog(kg float64) *WeightLog {
	return &WeightLog{Weight: kg}
}

// WithRecordedAt backfills the entry to a specific time.
func (w *WeightLog) WithRecordedAt(t time.Time) *WeightLog {
	w.RecordedAt = t
	return w
}
