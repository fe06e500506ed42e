// ABOUTME: Data migration between wellness storage backends.
// ABOUTME: Copies one user's profile and logs from a source store to a destination.
package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Profiles int
	Weights  int
	Diets    int
	Fitness  int
}

// Total is the number of rows written.
func (s *MigrateSummary) Total() int {
	return s.Profiles + s.Weights + s.Diets + s.Fitness
}

// MigrateData copies everything userID owns from src to dst, keeping ids
// and timestamps. The destination should not already hold those records.
func MigrateData(ctx context.Context, src, dst Store, userID string) (*MigrateSummary, error) {
	from := NewClient(src, StaticOwner(userID))
	to := NewClient(dst, StaticOwner(userID))

	data, err := Export(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	summary, err := Import(ctx, to, data)
	if err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}
	return summary, nil
}
