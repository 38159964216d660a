package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
)

type MatchRepository struct {
	mu         sync.RWMutex
	byID       map[string]match.Match
	byExternal map[string]string
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{
		byID:       make(map[string]match.Match),
		byExternal: make(map[string]string),
	}
}

func (r *MatchRepository) ListByTeam(_ context.Context, teamID string) ([]match.Match, error) {
	return r.list(func(item match.Match) bool { return item.TeamID == teamID }), nil
}

func (r *MatchRepository) ListByTeamSeason(_ context.Context, teamID, seasonKey string) ([]match.Match, error) {
	return r.list(func(item match.Match) bool {
		return item.TeamID == teamID && item.SeasonKey == seasonKey
	}), nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("match id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[item.ID]; exists {
		return fmt.Errorf("match already exists: %s", item.ID)
	}
	if key := externalKey(item); key != "" {
		if _, exists := r.byExternal[key]; exists {
			return fmt.Errorf("%w: team=%s external_id=%s", match.ErrDuplicateExternalID, item.TeamID, item.ExternalID)
		}
		r.byExternal[key] = item.ID
	}
	r.byID[item.ID] = item
	return nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[item.ID]
	if !exists {
		return fmt.Errorf("match not found: %s", item.ID)
	}
	// Identity columns are immutable.
	item.TeamID = current.TeamID
	item.ExternalID = current.ExternalID
	item.CreatedAt = current.CreatedAt
	r.byID[item.ID] = item
	return nil
}

func (r *MatchRepository) list(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.byID {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func externalKey(item match.Match) string {
	externalID := strings.TrimSpace(item.ExternalID)
	if externalID == "" {
		return ""
	}
	return item.TeamID + "\x00" + externalID
}
