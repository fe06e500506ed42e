// ABOUTME: FitnessLog model and ActivityType values for exercise entries.
// ABOUTME: Activity types are free-form; the listed ones are suggestions.
package models

import (
	"strings"
	"time"
)

// ActivityType names the kind of exercise.
type ActivityType string

const (
	ActivityRunning  ActivityType = "running"
	ActivityStrength ActivityType = "strength"
	ActivityYoga     ActivityType = "yoga"
	ActivityHIIT     ActivityType = "hiit"
	ActivitySwimming ActivityType = "swimming"
)

// SuggestedActivities lists the activity types offered by default.
var SuggestedActivities = []ActivityType{
	ActivityRunning, ActivityStrength, ActivityYoga, ActivityHIIT, ActivitySwimming,
}

// NormalizeActivity lowercases and trims a user-entered activity type.
func NormalizeActivity(s string) ActivityType {
	return ActivityType(strings.ToLower(strings.TrimSpace(s)))
}

// FitnessLog is one exercise session.
type FitnessLog struct {
	LogMeta         `yaml:",inline"`
	ActivityType    ActivityType `json:"activity_type" yaml:"activity_type"`
	DurationMinutes int          `json:"duration_minutes" yaml:"duration_minutes"`
	CaloriesBurned  int          `json:"calories_burned" yaml:"calories_burned"`
}

// NewFitnessLog creates an unsaved exercise entry.
func NewFitnessLog(activity ActivityType, minutes, calories int) *FitnessLog {
	return &FitnessLog{
		ActivityType:    activity,
		DurationMinutes: minutes,
		CaloriesBurned:  calories,
	}
}

// WithRecordedAt backfills the entry to a specific time.
func (f *FitnessLog) WithRecordedAt(t time.Time) *FitnessLog {
	f.RecordedAt = t
	return f
}
