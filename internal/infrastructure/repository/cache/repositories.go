package cache

import (
	"context"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	basecache "github.com/Volence/elemental-website-sub005/internal/platform/cache"
)

type archiveLookup struct {
	value  seasonarchive.Archive
	exists bool
}

// SeasonArchiveRepository fronts archive reads for the admin listing. Every
// write drops all cached archives; misses are cached too.
type SeasonArchiveRepository struct {
	next    seasonarchive.Repository
	lists   *basecache.Store[[]seasonarchive.Archive]
	lookups *basecache.Store[archiveLookup]
}

func NewSeasonArchiveRepository(next seasonarchive.Repository, ttl time.Duration) *SeasonArchiveRepository {
	return &SeasonArchiveRepository{
		next:    next,
		lists:   basecache.NewStore[[]seasonarchive.Archive](ttl),
		lookups: basecache.NewStore[archiveLookup](ttl),
	}
}

func (r *SeasonArchiveRepository) CreateOnce(ctx context.Context, item seasonarchive.Archive) (seasonarchive.Archive, bool, error) {
	stored, created, err := r.next.CreateOnce(ctx, item)
	if err != nil {
		return seasonarchive.Archive{}, false, err
	}
	if created {
		r.invalidate()
	}
	return cloneArchive(stored), created, nil
}

func (r *SeasonArchiveRepository) GetByID(ctx context.Context, archiveID string) (seasonarchive.Archive, bool, error) {
	return r.lookup(ctx, "id:"+archiveID, func(ctx context.Context) (seasonarchive.Archive, bool, error) {
		return r.next.GetByID(ctx, archiveID)
	})
}

func (r *SeasonArchiveRepository) GetByTeamSeason(ctx context.Context, teamID, seasonKey string) (seasonarchive.Archive, bool, error) {
	return r.lookup(ctx, "team:"+teamID+":season:"+seasonKey, func(ctx context.Context) (seasonarchive.Archive, bool, error) {
		return r.next.GetByTeamSeason(ctx, teamID, seasonKey)
	})
}

func (r *SeasonArchiveRepository) ListByTeam(ctx context.Context, teamID string) ([]seasonarchive.Archive, error) {
	items, err := r.lists.GetOrLoad(ctx, teamID, func(ctx context.Context) ([]seasonarchive.Archive, error) {
		items, err := r.next.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cloneArchives(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneArchives(items), nil
}

func (r *SeasonArchiveRepository) SetHidden(ctx context.Context, archiveID string, hidden bool) error {
	if err := r.next.SetHidden(ctx, archiveID, hidden); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *SeasonArchiveRepository) invalidate() {
	r.lists.DeletePrefix("")
	r.lookups.DeletePrefix("")
}

func (r *SeasonArchiveRepository) lookup(ctx context.Context, key string, load func(context.Context) (seasonarchive.Archive, bool, error)) (seasonarchive.Archive, bool, error) {
	found, err := r.lookups.GetOrLoad(ctx, key, func(ctx context.Context) (archiveLookup, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return archiveLookup{}, err
		}
		return archiveLookup{value: cloneArchive(item), exists: exists}, nil
	})
	if err != nil {
		return seasonarchive.Archive{}, false, err
	}
	return cloneArchive(found.value), found.exists, nil
}

func cloneArchive(item seasonarchive.Archive) seasonarchive.Archive {
	item.Matches = append([]seasonarchive.ArchivedMatch(nil), item.Matches...)
	return item
}

func cloneArchives(items []seasonarchive.Archive) []seasonarchive.Archive {
	out := make([]seasonarchive.Archive, 0, len(items))
	for _, item := range items {
		out = append(out, cloneArchive(item))
	}
	return out
}
