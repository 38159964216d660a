package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = cloneTeam(item)
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) ListTracked(_ context.Context, afterID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	afterID = strings.TrimSpace(afterID)
	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		if !item.TrackingEnabled {
			continue
		}
		if afterID != "" && item.ID <= afterID {
			continue
		}
		out = append(out, cloneTeam(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	if !ok {
		return team.Team{}, false, nil
	}
	return cloneTeam(item), true, nil
}

func (r *TeamRepository) MarkSynced(_ context.Context, teamID string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team not found: %s", teamID)
	}
	at := syncedAt.UTC()
	item.LastSyncedAt = &at
	r.teams[teamID] = item
	return nil
}

// Upsert stores a team as the CMS would. Used by seeds and tests.
func (r *TeamRepository) Upsert(item team.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.teams[item.ID] = cloneTeam(item)
}

// swapSeason moves the season pointer when it still equals expected.
func (r *TeamRepository) swapSeason(teamID, expected, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return fmt.Errorf("team not found: %s", teamID)
	}
	if item.CurrentSeasonID != expected {
		return fmt.Errorf("%w: team=%s expected=%q actual=%q", season.ErrPointerMoved, teamID, expected, item.CurrentSeasonID)
	}
	item.CurrentSeasonID = next
	r.teams[teamID] = item
	return nil
}

func cloneTeam(item team.Team) team.Team {
	item.Roster = append([]string(nil), item.Roster...)
	if item.LastSyncedAt != nil {
		at := *item.LastSyncedAt
		item.LastSyncedAt = &at
	}
	return item
}
