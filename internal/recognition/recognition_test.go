// ABOUTME: Tests for the simulated meal recognizer.
// ABOUTME: Checks the fixed dish, the draft diet entry and cancellation.
package recognition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/wellness/internal/models"
)

func TestSimulatedReturnsFixedDish(t *testing.T) {
	r := NewSimulated(0)

	res, err := r.Recognize(context.Background(), []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, 320, res.Calories)
	assert.Equal(t, 35.0, res.ProteinG)
	assert.Equal(t, 12.0, res.CarbsG)
	assert.Equal(t, 8.0, res.FatG)
	assert.Contains(t, res.Description, "chicken")
}

func TestNewSimulatedDefaultsDelay(t *testing.T) {
	assert.Equal(t, DefaultDelay, NewSimulated(-1).Delay)
	assert.Equal(t, 50*time.Millisecond, NewSimulated(50*time.Millisecond).Delay)
}

func TestSimulatedHonoursCancel(t *testing.T) {
	r := NewSimulated(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestSimulatedCancelledWithoutDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulated(0).Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultDietLog(t *testing.T) {
	res, err := NewSimulated(0).Recognize(context.Background(), nil)
	require.NoError(t, err)

	log := res.DietLog()
	assert.Equal(t, models.MealLunch, log.MealType)
	assert.True(t, log.IsAIGenerated)
	assert.Equal(t, 320, log.Calories)
	assert.Equal(t, 35.0, log.ProteinG)
	assert.Equal(t, 12.0, log.CarbsG)
	assert.Equal(t, 8.0, log.FatG)
	assert.True(t, log.RecordedAt.IsZero())
}
