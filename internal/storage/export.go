// ABOUTME: Export and import of one user's records.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/wellness/internal/models"
)

// ExportData represents the full export format for a user's data.
type ExportData struct {
	Version    string               `json:"version" yaml:"version"`
	ExportedAt time.Time            `json:"exported_at" yaml:"exported_at"`
	Tool       string               `json:"tool" yaml:"tool"`
	UserID     string               `json:"user_id" yaml:"user_id"`
	Profile    *models.Profile      `json:"profile,omitempty" yaml:"profile,omitempty"`
	Weights    []*models.WeightLog  `json:"weights" yaml:"weights"`
	Diets      []*models.DietLog    `json:"diets" yaml:"diets"`
	Fitness    []*models.FitnessLog `json:"fitness" yaml:"fitness"`
}

// Export reads every record the session user owns, oldest first.
func Export(ctx context.Context, c *Client) (*ExportData, error) {
	userID, err := c.UserID()
	if err != nil {
		return nil, err
	}

	profile, err := c.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	weights, err := c.Weights.List(ctx, All, Ascending)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	diets, err := c.Diets.List(ctx, All, Ascending)
	if err != nil {
		return nil, fmt.Errorf("list diets: %w", err)
	}
	fitness, err := c.Fitness.List(ctx, All, Ascending)
	if err != nil {
		return nil, fmt.Errorf("list fitness: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: c.Now(),
		Tool:       "wellness",
		UserID:     userID,
		Profile:    profile,
		Weights:    weights,
		Diets:      diets,
		Fitness:    fitness,
	}, nil
}

// Import writes data into the session user's collections. Records keep their
// ids and timestamps but are re-owned by the session user.
func Import(ctx context.Context, c *Client, data *ExportData) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	if data.Profile != nil {
		fields := models.ProfileFields{TargetWeight: data.Profile.TargetWeight, StartWeight: data.Profile.StartWeight}
		if _, err := c.UpsertProfile(ctx, fields); err != nil {
			return nil, fmt.Errorf("import profile: %w", err)
		}
		summary.Profiles++
	}
	for _, w := range data.Weights {
		w.UserID = ""
		if _, err := c.Weights.Insert(ctx, w); err != nil {
			return nil, fmt.Errorf("import weight: %w", err)
		}
		summary.Weights++
	}
	for _, d := range data.Diets {
		d.UserID = ""
		if _, err := c.Diets.Insert(ctx, d); err != nil {
			return nil, fmt.Errorf("import diet: %w", err)
		}
		summary.Diets++
	}
	for _, f := range data.Fitness {
		f.UserID = ""
		if _, err := c.Fitness.Insert(ctx, f); err != nil {
			return nil, fmt.Errorf("import fitness: %w", err)
		}
		summary.Fitness++
	}
	return summary, nil
}

// ExportJSON encodes data as indented JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON decodes an ExportJSON document.
func ImportJSON(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return &data, nil
}

// ExportYAML encodes data as YAML with short ids and RFC 3339 times.
func ExportYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version    string        `yaml:"version"`
		ExportedAt string        `yaml:"exported_at"`
		Tool       string        `yaml:"tool"`
		Profile    *yamlProfile  `yaml:"profile,omitempty"`
		Weights    []yamlWeight  `yaml:"weights"`
		Diets      []yamlDiet    `yaml:"diets"`
		Fitness    []yamlFitness `yaml:"fitness"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Weights:    make([]yamlWeight, 0, len(data.Weights)),
		Diets:      make([]yamlDiet, 0, len(data.Diets)),
		Fitness:    make([]yamlFitness, 0, len(data.Fitness)),
	}

	if p := data.Profile; p != nil {
		yamlData.Profile = &yamlProfile{TargetWeight: p.TargetWeight, StartWeight: p.StartWeight}
	}
	for _, w := range data.Weights {
		yamlData.Weights = append(yamlData.Weights, yamlWeight{
			ID:         w.ShortID(),
			RecordedAt: w.RecordedAt.Format(time.RFC3339),
			Weight:     w.Weight,
		})
	}
	for _, d := range data.Diets {
		yamlData.Diets = append(yamlData.Diets, yamlDiet{
			ID:          d.ShortID(),
			RecordedAt:  d.RecordedAt.Format(time.RFC3339),
			Meal:        string(d.MealType),
			Description: d.Description,
			Calories:    d.Calories,
			ProteinG:    d.ProteinG,
			CarbsG:      d.CarbsG,
			FatG:        d.FatG,
			Scanned:     d.IsAIGenerated,
		})
	}
	for _, f := range data.Fitness {
		yamlData.Fitness = append(yamlData.Fitness, yamlFitness{
			ID:         f.ShortID(),
			RecordedAt: f.RecordedAt.Format(time.RFC3339),
			Activity:   string(f.ActivityType),
			Minutes:    f.DurationMinutes,
			Calories:   f.CaloriesBurned,
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlProfile struct {
	TargetWeight *float64 `yaml:"target_weight,omitempty"`
	StartWeight  *float64 `yaml:"start_weight,omitempty"`
}

type yamlWeight struct {
	ID         string  `yaml:"id"`
	RecordedAt string  `yaml:"recorded_at"`
	Weight     float64 `yaml:"weight_kg"`
}

type yamlDiet struct {
	ID          string  `yaml:"id"`
	RecordedAt  string  `yaml:"recorded_at"`
	Meal        string  `yaml:"meal"`
	Description string  `yaml:"description"`
	Calories    int     `yaml:"calories"`
	ProteinG    float64 `yaml:"protein_g"`
	CarbsG      float64 `yaml:"carbs_g"`
	FatG        float64 `yaml:"fat_g"`
	Scanned     bool    `yaml:"scanned,omitempty"`
}

type yamlFitness struct {
	ID         string `yaml:"id"`
	RecordedAt string `yaml:"recorded_at"`
	Activity   string `yaml:"activity"`
	Minutes    int    `yaml:"minutes"`
	Calories   int    `yaml:"calories"`
}

// ExportMarkdown renders data as one Markdown table per collection.
func ExportMarkdown(data *ExportData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Wellness Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	if p := data.Profile; p != nil && p.TargetWeight != nil {
		sb.WriteString(fmt.Sprintf("Target weight: %.1f kg\n\n", *p.TargetWeight))
	}

	if len(data.Weights) > 0 {
		sb.WriteString("## Weight\n\n")
		sb.WriteString("| Date | Weight |\n")
		sb.WriteString("|------|--------|\n")
		for _, w := range data.Weights {
			sb.WriteString(fmt.Sprintf("| %s | %.1f kg |\n", w.RecordedAt.Format("2006-01-02 15:04"), w.Weight))
		}
		sb.WriteString("\n")
	}

	if len(data.Diets) > 0 {
		sb.WriteString("## Diet\n\n")
		sb.WriteString("| Date | Meal | Description | kcal | P/C/F (g) |\n")
		sb.WriteString("|------|------|-------------|------|-----------|\n")
		for _, d := range data.Diets {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.0f/%.0f/%.0f |\n",
				d.RecordedAt.Format("2006-01-02 15:04"), d.MealType, d.Description,
				d.Calories, d.ProteinG, d.CarbsG, d.FatG))
		}
		sb.WriteString("\n")
	}

	if len(data.Fitness) > 0 {
		sb.WriteString("## Fitness\n\n")
		sb.WriteString("| Date | Activity | Duration | kcal |\n")
		sb.WriteString("|------|----------|----------|------|\n")
		for _, f := range data.Fitness {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d min | %d |\n",
				f.RecordedAt.Format("2006-01-02 15:04"), f.ActivityType, f.DurationMinutes, f.CaloriesBurned))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
