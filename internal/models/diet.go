// ABOUTME: DietLog model and MealType enum for food intake.
// ABOUTME: Macros are grams; calories are kcal.
package models

import (
	"fmt"
	"strings"
	"time"
)

// MealType classifies a diet entry.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// DefaultScanMealType is assigned to meals created from a photo scan.
const DefaultScanMealType = MealLunch

// AllMealTypes lists the accepted meal types in display order.
var AllMealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ParseMealType validates a meal type string, case-insensitively.
func ParseMealType(s string) (MealType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, mt := range AllMealTypes {
		if string(mt) == s {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown meal type: %s", s)
}

// DietLog is one eaten meal or food item.
type DietLog struct {
	LogMeta       `yaml:",inline"`
	Description   string   `json:"description" yaml:"description"`
	Calories      int      `json:"calories" yaml:"calories"`
	ProteinG      float64  `json:"protein_g" yaml:"protein_g"`
	CarbsG        float64  `json:"carbs_g" yaml:"carbs_g"`
	FatG          float64  `json:"fat_g" yaml:"fat_g"`
	MealType      MealType `json:"meal_type" yaml:"meal_type"`
	IsAIGenerated bool     `json:"is_ai_generated" yaml:"is_ai_generated"`
}

// NewDietLog creates an unsaved manual diet entry.
func NewDietLog(description string, calories int, mealType MealType) *DietLog {
	return &DietLog{
		Description: description,
		Calories:    calories,
		MealType:    mealType,
	}
}

// WithMacros sets protein, carbs and fat grams.
func (d *DietLog) WithMacros(protein, carbs, fat float64) *DietLog {
	d.ProteinG = protein
	d.CarbsG = carbs
	d.FatG = fat
	return d
}

// WithRecordedAt backfills the entry to a specific time.
func (d *DietLog) WithRecordedAt(t time.Time) *DietLog {
	d.RecordedAt = t
	return d
}
