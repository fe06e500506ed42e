// ABOUTME: Column mappings between log records and SQL rows.
// ABOUTME: Each codec lists its data columns and knows how to scan one row.
package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/wellness/internal/models"
)

// timeLayout is fixed-width so lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timeValue scans either a driver time or its text encoding.
type timeValue struct {
	time.Time
}

func (v *timeValue) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		v.Time = time.Time{}
	case time.Time:
		v.Time = s
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
	return nil
}

func (v *timeValue) parse(s string) error {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse time %q: %w", s, err)
		}
	}
	v.Time = t
	return nil
}

type codec[R models.Record] struct {
	collection models.Collection
	columns    []string
	values     func(R) []any
	scan       func(scanner) (R, error)
}

func fillMeta(m *models.LogMeta, id string, at timeValue) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", id, err)
	}
	m.ID = parsed
	m.RecordedAt = at.Time
	return nil
}

var weightCodec = codec[*models.WeightLog]{
	collection: models.CollectionWeight,
	columns:    []string{"weight"},
	values: func(w *models.WeightLog) []any {
		return []any{w.Weight}
	},
	scan: func(s scanner) (*models.WeightLog, error) {
		var (
			w  models.WeightLog
			id string
			at timeValue
		)
		if err := s.Scan(&id, &w.UserID, &at, &w.Weight); err != nil {
			return nil, err
		}
		return &w, fillMeta(&w.LogMeta, id, at)
	},
}

var dietCodec = codec[*models.DietLog]{
	collection: models.CollectionDiet,
	columns:    []string{"description", "calories", "protein_g", "carbs_g", "fat_g", "meal_type", "is_ai_generated"},
	values: func(d *models.DietLog) []any {
		return []any{d.Description, d.Calories, d.ProteinG, d.CarbsG, d.FatG, string(d.MealType), d.IsAIGenerated}
	},
	scan: func(s scanner) (*models.DietLog, error) {
		var (
			d        models.DietLog
			id       string
			at       timeValue
			mealType string
		)
		if err := s.Scan(&id, &d.UserID, &at,
			&d.Description, &d.Calories, &d.ProteinG, &d.CarbsG, &d.FatG, &mealType, &d.IsAIGenerated); err != nil {
			return nil, err
		}
		d.MealType = models.MealType(mealType)
		return &d, fillMeta(&d.LogMeta, id, at)
	},
}

var fitnessCodec = codec[*models.FitnessLog]{
	collection: models.CollectionFitness,
	columns:    []string{"activity_type", "duration_minutes", "calories_burned"},
	values: func(f *models.FitnessLog) []any {
		return []any{string(f.ActivityType), f.DurationMinutes, f.CaloriesBurned}
	},
	scan: func(s scanner) (*models.FitnessLog, error) {
		var (
			f        models.FitnessLog
			id       string
			at       timeValue
			activity string
		)
		if err := s.Scan(&id, &f.UserID, &at, &activity, &f.DurationMinutes, &f.CaloriesBurned); err != nil {
			return nil, err
		}
		f.ActivityType = models.ActivityType(activity)
		return &f, fillMeta(&f.LogMeta, id, at)
	},
}
