package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/season"
)

// SeasonRepository keeps seasons and moves the pointer on the shared
// TeamRepository, mirroring the single transaction used by postgres.
type SeasonRepository struct {
	mu      sync.RWMutex
	seasons map[string]season.Season
	teams   *TeamRepository
}

func NewSeasonRepository(teams *TeamRepository, seeds ...season.Season) *SeasonRepository {
	byID := make(map[string]season.Season, len(seeds))
	for _, item := range seeds {
		byID[item.ID] = cloneSeason(item)
	}
	return &SeasonRepository{seasons: byID, teams: teams}
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.seasons[seasonID]
	if !ok {
		return season.Season{}, false, nil
	}
	return cloneSeason(item), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	return r.StartNext(ctx, "", item)
}

func (r *SeasonRepository) UpdateStandings(_ context.Context, seasonID string, standings season.Standings, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.seasons[seasonID]
	if !ok {
		return fmt.Errorf("season not found: %s", seasonID)
	}
	at := syncedAt.UTC()
	item.Standings = standings
	item.LastSyncedAt = &at
	r.seasons[seasonID] = item
	return nil
}

func (r *SeasonRepository) StartNext(_ context.Context, previousSeasonID string, next season.Season) error {
	if err := next.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seasons[next.ID]; exists {
		return fmt.Errorf("season already exists: %s", next.ID)
	}
	if r.teams != nil {
		if err := r.teams.swapSeason(next.TeamID, previousSeasonID, next.ID); err != nil {
			return err
		}
	}
	r.seasons[next.ID] = cloneSeason(next)
	return nil
}

func cloneSeason(item season.Season) season.Season {
	if item.LastSyncedAt != nil {
		at := *item.LastSyncedAt
		item.LastSyncedAt = &at
	}
	return item
}
