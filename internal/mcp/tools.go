// ABOUTME: MCP tool implementations for the wellness tracker.
// ABOUTME: Logging, listing and deleting weight, meals and activities plus goal and summary reads.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/wellness/internal/metrics"
	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/storage"
)

const defaultListLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_weight",
		Description: "Record a body weight in kilograms",
	}, s.handleAddWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_goal",
		Description: "Set the target and/or start weight used for goal progress",
	}, s.handleSetGoal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_weight",
		Description: "Current weight, goal progress and the last 7 days of weigh-ins",
	}, s.handleGetWeight)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_meal",
		Description: "Record a meal with calories and optional macros",
	}, s.handleAddMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "scan_meal",
		Description: "Recognize a meal photo; the result stays pending until confirm_meal",
	}, s.handleScanMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "confirm_meal",
		Description: "Save the pending scanned meal, or discard it",
	}, s.handleConfirmMeal)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_activity",
		Description: "Record an exercise session",
	}, s.handleAddActivity)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_entries",
		Description: "List recent weight, diet or fitness entries",
	}, s.handleListEntries)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_entry",
		Description: "Delete a weight, diet or fitness entry by ID or ID prefix",
	}, s.handleDeleteEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_today",
		Description: "Today's calorie intake, burn and net balance",
	}, s.handleGetToday)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_report",
		Description: "Daily intake vs burn for the last 7 days with averages and macro split",
	}, s.handleGetReport)
}

// Tool input/output types

type addWeightInput struct {
	WeightKg   float64 `json:"weight_kg" jsonschema:"Body weight in kilograms"`
	RecordedAt string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type entryOutput struct {
	ID      string `json:"id"`
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}

type setGoalInput struct {
	TargetWeight *float64 `json:"target_weight,omitempty" jsonschema:"Goal weight in kilograms"`
	StartWeight  *float64 `json:"start_weight,omitempty" jsonschema:"Starting weight in kilograms"`
}

type weightOutput struct {
	Current   *float64      `json:"current_kg,omitempty"`
	Start     *float64      `json:"start_kg,omitempty"`
	Target    *float64      `json:"target_kg,omitempty"`
	Progress  float64       `json:"progress_pct"`
	Remaining *float64      `json:"remaining_kg,omitempty"`
	History   []weightEntry `json:"history"`
	Message   string        `json:"message"`
}

type addMealInput struct {
	Description string  `json:"description" jsonschema:"What was eaten"`
	Calories    int     `json:"calories" jsonschema:"Energy in kcal"`
	ProteinG    float64 `json:"protein_g,omitempty" jsonschema:"Protein grams"`
	CarbsG      float64 `json:"carbs_g,omitempty" jsonschema:"Carbohydrate grams"`
	FatG        float64 `json:"fat_g,omitempty" jsonschema:"Fat grams"`
	MealType    string  `json:"meal_type,omitempty" jsonschema:"breakfast, lunch, dinner or snack (default lunch)"`
	RecordedAt  string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
}

type scanMealInput struct {
	Photo string `json:"photo,omitempty" jsonschema:"Base64 photo of the meal"`
}

type scanOutput struct {
	Description string  `json:"description"`
	Calories    int     `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	Message     string  `json:"message"`
}

type confirmMealInput struct {
	Discard bool `json:"discard,omitempty" jsonschema:"Drop the pending scan instead of saving it"`
}

type addActivityInput struct {
	ActivityType    string `json:"activity_type" jsonschema:"running, strength, yoga, hiit, swimming or any other activity"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"Duration in minutes"`
	CaloriesBurned  int    `json:"calories_burned" jsonschema:"Energy burned in kcal"`
}

type listEntriesInput struct {
	Collection string `json:"collection" jsonschema:"weight, diet or fitness"`
	Days       int    `json:"days,omitempty" jsonschema:"Only entries from the last N days (default all)"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listOutput struct {
	Collection string         `json:"collection"`
	Weights    []weightEntry  `json:"weights,omitempty"`
	Diets      []dietEntry    `json:"diets,omitempty"`
	Fitness    []fitnessEntry `json:"fitness,omitempty"`
	Count      int            `json:"count"`
}

type deleteEntryInput struct {
	Collection string `json:"collection" jsonschema:"weight, diet or fitness"`
	ID         string `json:"id" jsonschema:"Entry ID or unique prefix"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type todayOutput struct {
	Date    string         `json:"date"`
	Intake  int            `json:"intake_kcal"`
	Burned  int            `json:"burned_kcal"`
	Net     int            `json:"net_kcal"`
	Diet    []dietEntry    `json:"diet"`
	Fitness []fitnessEntry `json:"fitness"`
}

type dayOutput struct {
	Label  string `json:"label"`
	Date   string `json:"date"`
	Intake int    `json:"intake_kcal"`
	Burn   int    `json:"burn_kcal"`
}

type reportOutput struct {
	Series   []dayOutput      `json:"series"`
	Averages metrics.Averages `json:"averages"`
	Macros   metrics.Macros   `json:"macros"`
}

// Flat record views keep ids and timestamps as strings in the tool schema.

type weightEntry struct {
	ID         string  `json:"id"`
	RecordedAt string  `json:"recorded_at"`
	WeightKg   float64 `json:"weight_kg"`
}

type dietEntry struct {
	ID            string  `json:"id"`
	RecordedAt    string  `json:"recorded_at"`
	Description   string  `json:"description"`
	Calories      int     `json:"calories"`
	ProteinG      float64 `json:"protein_g"`
	CarbsG        float64 `json:"carbs_g"`
	FatG          float64 `json:"fat_g"`
	MealType      string  `json:"meal_type"`
	IsAIGenerated bool    `json:"is_ai_generated"`
}

type fitnessEntry struct {
	ID              string `json:"id"`
	RecordedAt      string `json:"recorded_at"`
	ActivityType    string `json:"activity_type"`
	DurationMinutes int    `json:"duration_minutes"`
	CaloriesBurned  int    `json:"calories_burned"`
}

func stamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

func weightEntries(logs []*models.WeightLog) []weightEntry {
	out := make([]weightEntry, len(logs))
	for i, l := range logs {
		out[i] = weightEntry{ID: l.ID.String(), RecordedAt: stamp(l.RecordedAt), WeightKg: l.Weight}
	}
	return out
}

func dietEntries(logs []*models.DietLog) []dietEntry {
	out := make([]dietEntry, len(logs))
	for i, l := range logs {
		out[i] = dietEntry{
			ID:            l.ID.String(),
			RecordedAt:    stamp(l.RecordedAt),
			Description:   l.Description,
			Calories:      l.Calories,
			ProteinG:      l.ProteinG,
			CarbsG:        l.CarbsG,
			FatG:          l.FatG,
			MealType:      string(l.MealType),
			IsAIGenerated: l.IsAIGenerated,
		}
	}
	return out
}

func fitnessEntries(logs []*models.FitnessLog) []fitnessEntry {
	out := make([]fitnessEntry, len(logs))
	for i, l := range logs {
		out[i] = fitnessEntry{
			ID:              l.ID.String(),
			RecordedAt:      stamp(l.RecordedAt),
			ActivityType:    string(l.ActivityType),
			DurationMinutes: l.DurationMinutes,
			CaloriesBurned:  l.CaloriesBurned,
		}
	}
	return out
}

type emptyInput struct{}

// parseRecordedAt accepts RFC 3339 or "2006-01-02 15:04" in local time.
// An empty string means now.
func parseRecordedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid recorded_at %q: want RFC 3339 or YYYY-MM-DD HH:MM", s)
	}
	return t, nil
}

func ignored(what string) entryOutput {
	return entryOutput{Message: fmt.Sprintf("Nothing recorded: %s", what)}
}

// Tool handlers

func (s *Server) handleAddWeight(ctx context.Context, req *mcp.CallToolRequest, input addWeightInput) (*mcp.CallToolResult, entryOutput, error) {
	at, err := parseRecordedAt(input.RecordedAt)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if !(input.WeightKg > 0) {
		return nil, ignored("weight must be a positive number"), nil
	}

	w, err := s.tracker.Weight.Add(ctx, models.NewWeightLog(input.WeightKg).WithRecordedAt(at))
	if err != nil {
		return nil, entryOutput{}, err
	}
	return nil, entryOutput{
		ID:      w.ShortID(),
		Saved:   true,
		Message: fmt.Sprintf("Added weight: %.1f kg (ID: %s)", w.Weight, w.ShortID()),
	}, nil
}

func (s *Server) handleSetGoal(ctx context.Context, req *mcp.CallToolRequest, input setGoalInput) (*mcp.CallToolResult, weightOutput, error) {
	if input.TargetWeight == nil && input.StartWeight == nil {
		return nil, weightOutput{}, errors.New("set target_weight, start_weight or both")
	}
	if _, err := s.tracker.Weight.SetGoal(ctx, models.ProfileFields{
		TargetWeight: input.TargetWeight,
		StartWeight:  input.StartWeight,
	}); err != nil {
		return nil, weightOutput{}, err
	}
	return s.handleGetWeight(ctx, req, emptyInput{})
}

func (s *Server) handleGetWeight(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, weightOutput, error) {
	if err := s.tracker.Weight.Refresh(ctx); err != nil {
		return nil, weightOutput{}, err
	}
	v := s.tracker.Weight.View()

	out := weightOutput{
		Current:  v.Current,
		Start:    v.Start,
		Target:   v.Target,
		Progress: metrics.Round(v.Progress, 1),
		History:  weightEntries(v.History),
	}
	if v.DeltaKnown {
		out.Remaining = models.Float(metrics.Round(v.Delta, 1))
	}
	switch {
	case v.Current == nil:
		out.Message = "No weight recorded yet."
	case v.Target == nil:
		out.Message = fmt.Sprintf("Current weight %.1f kg. No goal set.", *v.Current)
	default:
		out.Message = fmt.Sprintf("Current weight %.1f kg, %.1f kg from goal (%.0f%% there).", *v.Current, v.Delta, v.Progress)
	}
	return nil, out, nil
}

func (s *Server) handleAddMeal(ctx context.Context, req *mcp.CallToolRequest, input addMealInput) (*mcp.CallToolResult, entryOutput, error) {
	at, err := parseRecordedAt(input.RecordedAt)
	if err != nil {
		return nil, entryOutput{}, err
	}
	var mealType models.MealType
	if input.MealType != "" {
		if mealType, err = models.ParseMealType(input.MealType); err != nil {
			return nil, entryOutput{}, err
		}
	}

	entry := models.NewDietLog(input.Description, input.Calories, mealType).
		WithMacros(input.ProteinG, input.CarbsG, input.FatG).
		WithRecordedAt(at)
	d, err := s.tracker.Diet.Add(ctx, entry)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if d == nil {
		return nil, ignored("a meal needs a description and positive calories"), nil
	}
	return nil, entryOutput{
		ID:      d.ShortID(),
		Saved:   true,
		Message: fmt.Sprintf("Added %s: %s, %d kcal (ID: %s)", d.MealType, d.Description, d.Calories, d.ShortID()),
	}, nil
}

func (s *Server) handleScanMeal(ctx context.Context, req *mcp.CallToolRequest, input scanMealInput) (*mcp.CallToolResult, scanOutput, error) {
	res, err := s.tracker.Diet.Scan(ctx, []byte(input.Photo))
	if err != nil {
		return nil, scanOutput{}, err
	}
	return nil, scanOutput{
		Description: res.Description,
		Calories:    res.Calories,
		ProteinG:    res.ProteinG,
		CarbsG:      res.CarbsG,
		FatG:        res.FatG,
		Message:     fmt.Sprintf("Recognized %s (%d kcal). Call confirm_meal to save it.", res.Description, res.Calories),
	}, nil
}

func (s *Server) handleConfirmMeal(ctx context.Context, req *mcp.CallToolRequest, input confirmMealInput) (*mcp.CallToolResult, entryOutput, error) {
	if input.Discard {
		s.tracker.Diet.Discard()
		return nil, entryOutput{Message: "Discarded the scanned meal."}, nil
	}
	d, err := s.tracker.Diet.Confirm(ctx)
	if err != nil {
		return nil, entryOutput{}, err
	}
	return nil, entryOutput{
		ID:      d.ShortID(),
		Saved:   true,
		Message: fmt.Sprintf("Added %s: %s, %d kcal (ID: %s)", d.MealType, d.Description, d.Calories, d.ShortID()),
	}, nil
}

func (s *Server) handleAddActivity(ctx context.Context, req *mcp.CallToolRequest, input addActivityInput) (*mcp.CallToolResult, entryOutput, error) {
	f, err := s.tracker.Fitness.Add(ctx, input.ActivityType, input.DurationMinutes, input.CaloriesBurned)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if f == nil {
		return nil, ignored("an activity needs a positive duration and calories"), nil
	}
	return nil, entryOutput{
		ID:      f.ShortID(),
		Saved:   true,
		Message: fmt.Sprintf("Added %s: %d min, %d kcal (ID: %s)", f.ActivityType, f.DurationMinutes, f.CaloriesBurned, f.ShortID()),
	}, nil
}

func parseCollection(name string) (models.Collection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "weight", "weights", string(models.CollectionWeight):
		return models.CollectionWeight, nil
	case "diet", "diets", "meal", "meals", string(models.CollectionDiet):
		return models.CollectionDiet, nil
	case "fitness", "activity", "activities", string(models.CollectionFitness):
		return models.CollectionFitness, nil
	default:
		return "", fmt.Errorf("unknown collection: %q (want weight, diet or fitness)", name)
	}
}

func (s *Server) handleListEntries(ctx context.Context, req *mcp.CallToolRequest, input listEntriesInput) (*mcp.CallToolResult, listOutput, error) {
	collection, err := parseCollection(input.Collection)
	if err != nil {
		return nil, listOutput{}, err
	}
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}
	rng := storage.All
	if input.Days > 0 {
		rng = storage.DaysRange(s.client.Now(), input.Days)
	}

	out := listOutput{Collection: string(collection)}
	switch collection {
	case models.CollectionWeight:
		recs, err := s.client.Weights.List(ctx, rng, storage.Descending)
		if err != nil {
			return nil, listOutput{}, err
		}
		out.Weights = weightEntries(limit(recs, input.Limit))
		out.Count = len(out.Weights)
	case models.CollectionDiet:
		recs, err := s.client.Diets.List(ctx, rng, storage.Descending)
		if err != nil {
			return nil, listOutput{}, err
		}
		out.Diets = dietEntries(limit(recs, input.Limit))
		out.Count = len(out.Diets)
	case models.CollectionFitness:
		recs, err := s.client.Fitness.List(ctx, rng, storage.Descending)
		if err != nil {
			return nil, listOutput{}, err
		}
		out.Fitness = fitnessEntries(limit(recs, input.Limit))
		out.Count = len(out.Fitness)
	}
	return nil, out, nil
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func (s *Server) handleDeleteEntry(ctx context.Context, req *mcp.CallToolRequest, input deleteEntryInput) (*mcp.CallToolResult, simpleOutput, error) {
	collection, err := parseCollection(input.Collection)
	if err != nil {
		return nil, simpleOutput{}, err
	}

	var id uuid.UUID
	switch collection {
	case models.CollectionWeight:
		if id, err = s.client.Weights.Resolve(ctx, input.ID); err == nil {
			err = s.tracker.Weight.Delete(ctx, id)
		}
	case models.CollectionDiet:
		if id, err = s.client.Diets.Resolve(ctx, input.ID); err == nil {
			err = s.tracker.Diet.Delete(ctx, id)
		}
	case models.CollectionFitness:
		if id, err = s.client.Fitness.Resolve(ctx, input.ID); err == nil {
			err = s.tracker.Fitness.Delete(ctx, id)
		}
	}
	if err != nil {
		return nil, simpleOutput{}, err
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s entry: %s", collection, id.String()[:8]),
	}, nil
}

func (s *Server) today(ctx context.Context) (todayOutput, error) {
	if err := s.tracker.Home.Refresh(ctx); err != nil {
		return todayOutput{}, err
	}
	v := s.tracker.Home.View()
	return todayOutput{
		Date:    s.client.Now().Format(time.DateOnly),
		Intake:  v.Totals.Intake,
		Burned:  v.Totals.Burned,
		Net:     v.Totals.Net(),
		Diet:    dietEntries(v.Diet),
		Fitness: fitnessEntries(v.Fitness),
	}, nil
}

func (s *Server) report(ctx context.Context) (reportOutput, error) {
	if err := s.tracker.Report.Refresh(ctx); err != nil {
		return reportOutput{}, err
	}
	v := s.tracker.Report.View()
	series := make([]dayOutput, len(v.Series))
	for i, p := range v.Series {
		series[i] = dayOutput{Label: p.Label, Date: p.Date.Format(time.DateOnly), Intake: p.Intake, Burn: p.Burn}
	}
	return reportOutput{Series: series, Averages: metrics.Averages{
		Intake: metrics.Round(v.Averages.Intake, 1),
		Burn:   metrics.Round(v.Averages.Burn, 1),
		Net:    metrics.Round(v.Averages.Net, 1),
	}, Macros: v.Macros}, nil
}

func (s *Server) handleGetToday(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, todayOutput, error) {
	out, err := s.today(ctx)
	return nil, out, err
}

func (s *Server) handleGetReport(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, reportOutput, error) {
	out, err := s.report(ctx)
	return nil, out, err
}
