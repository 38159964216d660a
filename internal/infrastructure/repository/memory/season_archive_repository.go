package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
)

type SeasonArchiveRepository struct {
	mu       sync.RWMutex
	byID     map[string]seasonarchive.Archive
	bySeason map[string]string
}

func NewSeasonArchiveRepository() *SeasonArchiveRepository {
	return &SeasonArchiveRepository{
		byID:     make(map[string]seasonarchive.Archive),
		bySeason: make(map[string]string),
	}
}

func (r *SeasonArchiveRepository) CreateOnce(_ context.Context, item seasonarchive.Archive) (seasonarchive.Archive, bool, error) {
	if err := item.Validate(); err != nil {
		return seasonarchive.Archive{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := archiveSeasonKey(item.TeamID, item.SeasonKey)
	if existingID, ok := r.bySeason[key]; ok {
		return cloneArchive(r.byID[existingID]), false, nil
	}
	if _, exists := r.byID[item.ID]; exists {
		return seasonarchive.Archive{}, false, fmt.Errorf("archive already exists: %s", item.ID)
	}
	r.byID[item.ID] = cloneArchive(item)
	r.bySeason[key] = item.ID
	return cloneArchive(item), true, nil
}

func (r *SeasonArchiveRepository) GetByID(_ context.Context, archiveID string) (seasonarchive.Archive, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[archiveID]
	if !ok {
		return seasonarchive.Archive{}, false, nil
	}
	return cloneArchive(item), true, nil
}

func (r *SeasonArchiveRepository) GetByTeamSeason(_ context.Context, teamID, seasonKey string) (seasonarchive.Archive, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	archiveID, ok := r.bySeason[archiveSeasonKey(teamID, seasonKey)]
	if !ok {
		return seasonarchive.Archive{}, false, nil
	}
	return cloneArchive(r.byID[archiveID]), true, nil
}

func (r *SeasonArchiveRepository) ListByTeam(_ context.Context, teamID string) ([]seasonarchive.Archive, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]seasonarchive.Archive, 0)
	for _, item := range r.byID {
		if item.TeamID == teamID {
			out = append(out, cloneArchive(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArchivedAt.After(out[j].ArchivedAt) })
	return out, nil
}

func (r *SeasonArchiveRepository) SetHidden(_ context.Context, archiveID string, hidden bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.byID[archiveID]
	if !ok {
		return fmt.Errorf("archive not found: %s", archiveID)
	}
	item.Hidden = hidden
	r.byID[archiveID] = item
	return nil
}

func archiveSeasonKey(teamID, seasonKey string) string {
	return teamID + "\x00" + seasonKey
}

func cloneArchive(item seasonarchive.Archive) seasonarchive.Archive {
	item.Matches = append([]seasonarchive.ArchivedMatch(nil), item.Matches...)
	return item
}
