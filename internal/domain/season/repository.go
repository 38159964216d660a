package season

import (
	"context"
	"errors"
	"time"
)

// ErrPointerMoved is returned by StartNext when the team no longer points at
// the expected previous season.
var ErrPointerMoved = errors.New("team season pointer moved")

type Repository interface {
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	// Create inserts the first season of a team and points the team at it.
	Create(ctx context.Context, item Season) error
	UpdateStandings(ctx context.Context, seasonID string, standings Standings, syncedAt time.Time) error
	// StartNext inserts next and moves the team pointer from previousSeasonID to
	// next.ID in one transaction.
	StartNext(ctx context.Context, previousSeasonID string, next Season) error
}
