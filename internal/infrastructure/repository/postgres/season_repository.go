package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

const seasonColumns = "public_id, team_public_id, season_key, standing_rank, wins, losses, ties, points, division, region, last_synced_at, created_at"

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select(seasonColumns).From("seasons").
		Where(qb.Eq("public_id", seasonID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}
	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) Create(ctx context.Context, item season.Season) error {
	return r.StartNext(ctx, "", item)
}

func (r *SeasonRepository) UpdateStandings(ctx context.Context, seasonID string, standings season.Standings, syncedAt time.Time) error {
	query, args, err := qb.Update("seasons").
		Set("standing_rank", standings.Rank).
		Set("wins", standings.Wins).
		Set("losses", standings.Losses).
		Set("ties", standings.Ties).
		Set("points", standings.Points).
		Set("division", standings.Division).
		Set("region", standings.Region).
		Set("last_synced_at", syncedAt.UTC()).
		Where(qb.Eq("public_id", seasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season standings query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update season standings id=%s: %w", seasonID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("season not found: %s", seasonID)
	}
	return nil
}

// StartNext inserts next and swaps the team pointer in one transaction. The
// pointer update is a compare-and-swap on previousSeasonID; an empty previous
// id means the team must not point at any season yet.
func (r *SeasonRepository) StartNext(ctx context.Context, previousSeasonID string, next season.Season) error {
	if err := next.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for season start: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	createdAt := next.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	insertQuery, insertArgs, err := qb.InsertModel("seasons", seasonTableModel{
		PublicID:  next.ID,
		TeamID:    next.TeamID,
		SeasonKey: next.SeasonKey,
		Rank:      next.Standings.Rank,
		Wins:      next.Standings.Wins,
		Losses:    next.Standings.Losses,
		Ties:      next.Standings.Ties,
		Points:    next.Standings.Points,
		Division:  next.Standings.Division,
		Region:    next.Standings.Region,
		CreatedAt: createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert season team=%s key=%s: %w", next.TeamID, next.SeasonKey, err)
	}

	swapQuery, swapArgs, err := qb.Update("teams").
		Set("current_season_public_id", next.ID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", next.TeamID),
			qb.Expr("COALESCE(current_season_public_id, '') = ?", previousSeasonID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build swap season pointer query: %w", err)
	}
	res, err := tx.ExecContext(ctx, swapQuery, swapArgs...)
	if err != nil {
		return fmt.Errorf("swap season pointer team=%s: %w", next.TeamID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read swap season pointer result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: team=%s expected=%q", season.ErrPointerMoved, next.TeamID, previousSeasonID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit season start: %w", err)
	}
	return nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:        row.PublicID,
		TeamID:    row.TeamID,
		SeasonKey: row.SeasonKey,
		Standings: season.Standings{
			Rank:     row.Rank,
			Wins:     row.Wins,
			Losses:   row.Losses,
			Ties:     row.Ties,
			Points:   row.Points,
			Division: row.Division,
			Region:   row.Region,
		},
		LastSyncedAt: nullTimePtr(row.LastSyncedAt),
		CreatedAt:    row.CreatedAt.UTC(),
	}
}
