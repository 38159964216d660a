package postgres

import (
	"context"
	"fmt"

	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

const seasonArchiveColumns = "public_id, team_public_id, season_public_id, season_key, standings, matches, wins, losses, hidden, archived_at"

type SeasonArchiveRepository struct {
	db *sqlx.DB
}

func NewSeasonArchiveRepository(db *sqlx.DB) *SeasonArchiveRepository {
	return &SeasonArchiveRepository{db: db}
}

// CreateOnce relies on the (team_public_id, season_key) unique index: a losing
// insert returns nothing and the existing archive is read back instead.
func (r *SeasonArchiveRepository) CreateOnce(ctx context.Context, item seasonarchive.Archive) (seasonarchive.Archive, bool, error) {
	if err := item.Validate(); err != nil {
		return seasonarchive.Archive{}, false, err
	}

	model, err := archiveToInsertModel(item)
	if err != nil {
		return seasonarchive.Archive{}, false, fmt.Errorf("encode season archive: %w", err)
	}
	query, args, err := qb.InsertModel("season_archives", model,
		"ON CONFLICT (team_public_id, season_key) DO NOTHING RETURNING public_id")
	if err != nil {
		return seasonarchive.Archive{}, false, fmt.Errorf("build insert season archive query: %w", err)
	}

	var insertedID string
	if err := r.db.GetContext(ctx, &insertedID, query, args...); err != nil {
		if !isNotFound(err) {
			return seasonarchive.Archive{}, false, fmt.Errorf("insert season archive team=%s key=%s: %w", item.TeamID, item.SeasonKey, err)
		}
		existing, ok, getErr := r.GetByTeamSeason(ctx, item.TeamID, item.SeasonKey)
		if getErr != nil {
			return seasonarchive.Archive{}, false, getErr
		}
		if !ok {
			return seasonarchive.Archive{}, false, fmt.Errorf("season archive conflict without row team=%s key=%s", item.TeamID, item.SeasonKey)
		}
		return existing, false, nil
	}

	return item, true, nil
}

func (r *SeasonArchiveRepository) GetByID(ctx context.Context, archiveID string) (seasonarchive.Archive, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", archiveID))
}

func (r *SeasonArchiveRepository) GetByTeamSeason(ctx context.Context, teamID, seasonKey string) (seasonarchive.Archive, bool, error) {
	return r.getOne(ctx, qb.Eq("team_public_id", teamID), qb.Eq("season_key", seasonKey))
}

func (r *SeasonArchiveRepository) getOne(ctx context.Context, conditions ...qb.Condition) (seasonarchive.Archive, bool, error) {
	query, args, err := qb.Select(seasonArchiveColumns).From("season_archives").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return seasonarchive.Archive{}, false, fmt.Errorf("build select season archive query: %w", err)
	}

	var row seasonArchiveTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return seasonarchive.Archive{}, false, nil
		}
		return seasonarchive.Archive{}, false, fmt.Errorf("get season archive: %w", err)
	}

	item, err := archiveFromRow(row)
	if err != nil {
		return seasonarchive.Archive{}, false, fmt.Errorf("decode season archive id=%s: %w", row.PublicID, err)
	}
	return item, true, nil
}

func (r *SeasonArchiveRepository) ListByTeam(ctx context.Context, teamID string) ([]seasonarchive.Archive, error) {
	query, args, err := qb.Select(seasonArchiveColumns).From("season_archives").
		Where(qb.Eq("team_public_id", teamID)).
		OrderBy("archived_at DESC", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season archives query: %w", err)
	}

	var rows []seasonArchiveTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season archives: %w", err)
	}

	out := make([]seasonarchive.Archive, 0, len(rows))
	for _, row := range rows {
		item, err := archiveFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode season archive id=%s: %w", row.PublicID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// SetHidden is the only write allowed on an archived row.
func (r *SeasonArchiveRepository) SetHidden(ctx context.Context, archiveID string, hidden bool) error {
	query, args, err := qb.Update("season_archives").
		Set("hidden", hidden).
		Where(qb.Eq("public_id", archiveID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set archive hidden query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set archive hidden id=%s: %w", archiveID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("archive not found: %s", archiveID)
	}
	return nil
}
