// ABOUTME: Meal photo recognition that turns an image into a draft diet entry.
// ABOUTME: Simulated is the built-in recognizer returning a fixed dish after a delay.
package recognition

import (
	"context"
	"time"

	"github.com/harperreed/wellness/internal/models"
)

// DefaultDelay is how long Simulated pretends to analyse a photo.
const DefaultDelay = 2 * time.Second

// Result is a recognized dish, not yet stored.
type Result struct {
	Description string
	Calories    int
	ProteinG    float64
	CarbsG      float64
	FatG        float64
}

// DietLog drafts an AI-generated lunch entry from the result.
func (r *Result) DietLog() *models.DietLog {
	log := models.NewDietLog(r.Description, r.Calories, models.DefaultScanMealType).
		WithMacros(r.ProteinG, r.CarbsG, r.FatG)
	log.IsAIGenerated = true
	return log
}

// Recognizer analyses a meal photo.
type Recognizer interface {
	Recognize(ctx context.Context, photo []byte) (*Result, error)
}

// Simulated ignores the photo and always recognizes the same dish.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated returns a recognizer using DefaultDelay when delay < 0.
func NewSimulated(delay time.Duration) *Simulated {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Simulated{Delay: delay}
}

// Recognize waits for the configured delay, or until ctx is done.
func (s *Simulated) Recognize(ctx context.Context, _ []byte) (*Result, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Description: "Pan-seared chicken breast with broccoli",
		Calories:    320,
		ProteinG:    35,
		CarbsG:      12,
		FatG:        8,
	}, nil
}
