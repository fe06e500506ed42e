// ABOUTME: Tests for export, import and backend migration.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/wellness/internal/models"
)

func seedClient(t *testing.T, c *Client) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	_, err := c.UpsertProfile(ctx, models.ProfileFields{TargetWeight: models.Float(65)})
	require.NoError(t, err)
	_, err = c.Weights.Insert(ctx, models.NewWeightLog(72).WithRecordedAt(at))
	require.NoError(t, err)
	_, err = c.Diets.Insert(ctx, models.NewDietLog("Eggs", 210, models.MealBreakfast).WithMacros(18, 2, 14).WithRecordedAt(at))
	require.NoError(t, err)
	_, err = c.Fitness.Insert(ctx, models.NewFitnessLog(models.ActivityRunning, 30, 300).WithRecordedAt(at))
	require.NoError(t, err)
}

func TestExportJSONRoundTrip(t *testing.T) {
	c := NewClient(OpenMemory(), StaticOwner("alice"))
	seedClient(t, c)

	data, err := Export(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "1.0", data.Version)
	assert.Equal(t, "wellness", data.Tool)
	assert.Equal(t, "alice", data.UserID)
	require.NotNil(t, data.Profile)

	raw, err := ExportJSON(data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recorded_at"`)
	assert.Contains(t, string(raw), `"meal_type": "breakfast"`)

	back, err := ImportJSON(raw)
	require.NoError(t, err)
	require.Len(t, back.Weights, 1)
	assert.Equal(t, data.Weights[0].ID, back.Weights[0].ID)
	assert.Equal(t, 72.0, back.Weights[0].Weight)
}

func TestImportJSONInvalid(t *testing.T) {
	_, err := ImportJSON([]byte("nope"))
	assert.Error(t, err)
}

func TestExportYAML(t *testing.T) {
	c := NewClient(OpenMemory(), StaticOwner("alice"))
	seedClient(t, c)

	data, err := Export(context.Background(), c)
	require.NoError(t, err)

	raw, err := ExportYAML(data)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &parsed))
	assert.Equal(t, "wellness", parsed["tool"])
	assert.Len(t, parsed["weights"], 1)
	assert.Len(t, parsed["diets"], 1)
	assert.Len(t, parsed["fitness"], 1)
	assert.Contains(t, string(raw), "weight_kg: 72")
}

func TestExportMarkdown(t *testing.T) {
	c := NewClient(OpenMemory(), StaticOwner("alice"))
	seedClient(t, c)

	data, err := Export(context.Background(), c)
	require.NoError(t, err)

	md := ExportMarkdown(data)
	assert.Contains(t, md, "# Wellness Export")
	assert.Contains(t, md, "Target weight: 65.0 kg")
	assert.Contains(t, md, "| 2026-03-09 08:00 | 72.0 kg |")
	assert.Contains(t, md, "Eggs")
	assert.Contains(t, md, "| running | 30 min | 300 |")
}

func TestExportEmpty(t *testing.T) {
	c := NewClient(OpenMemory(), StaticOwner("nobody"))

	data, err := Export(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, data.Profile)
	assert.NotNil(t, data.Weights)
	assert.Empty(t, data.Weights)
	assert.NotContains(t, ExportMarkdown(data), "## Weight")
}

func TestMigrateData(t *testing.T) {
	src := OpenMemory()
	seedClient(t, NewClient(src, StaticOwner("alice")))
	seedClient(t, NewClient(src, StaticOwner("bob")))

	dst, err := OpenSQLite(filepath.Join(t.TempDir(), "wellness.db"))
	require.NoError(t, err)
	defer dst.Close()

	summary, err := MigrateData(context.Background(), src, dst, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Profiles)
	assert.Equal(t, 1, summary.Weights)
	assert.Equal(t, 1, summary.Diets)
	assert.Equal(t, 1, summary.Fitness)
	assert.Equal(t, 4, summary.Total())

	srcData, err := Export(context.Background(), NewClient(src, StaticOwner("alice")))
	require.NoError(t, err)
	dstData, err := Export(context.Background(), NewClient(dst, StaticOwner("alice")))
	require.NoError(t, err)

	require.Len(t, dstData.Weights, 1)
	assert.Equal(t, srcData.Weights[0].ID, dstData.Weights[0].ID)
	assert.True(t, srcData.Weights[0].RecordedAt.Equal(dstData.Weights[0].RecordedAt))
	assert.Equal(t, "Eggs", dstData.Diets[0].Description)
	require.NotNil(t, dstData.Profile)
	assert.Equal(t, 65.0, *dstData.Profile.TargetWeight)

	bobData, err := Export(context.Background(), NewClient(dst, StaticOwner("bob")))
	require.NoError(t, err)
	assert.Empty(t, bobData.Weights)
}
