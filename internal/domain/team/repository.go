package team

import (
	"context"
	"time"
)

// Repository describes team persistence needs from use cases.
type Repository interface {
	// ListTracked returns teams with tracking enabled ordered by id, starting after afterID.
	ListTracked(ctx context.Context, afterID string) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	MarkSynced(ctx context.Context, teamID string, syncedAt time.Time) error
}
