package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

const matchColumns = "public_id, team_public_id, external_id, season_key, opponent, scheduled_at, result, title, room_url, created_at, updated_at"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	return r.list(ctx, qb.Eq("team_public_id", teamID))
}

func (r *MatchRepository) ListByTeamSeason(ctx context.Context, teamID, seasonKey string) ([]match.Match, error) {
	return r.list(ctx, qb.Eq("team_public_id", teamID), qb.Eq("season_key", seasonKey))
}

func (r *MatchRepository) list(ctx context.Context, conditions ...qb.Condition) ([]match.Match, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	query, args, err := qb.Select(matchColumns).From("matches").
		Where(conditions...).
		OrderBy("created_at", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

// Create inserts a match. The partial unique index on (team, external id)
// turns a concurrent double create into match.ErrDuplicateExternalID.
func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("match id is required")
	}

	now := time.Now().UTC()
	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := item.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	query, args, err := qb.InsertModel("matches", matchInsertModel{
		PublicID:    item.ID,
		TeamID:      item.TeamID,
		ExternalID:  optionalString(item.ExternalID),
		SeasonKey:   item.SeasonKey,
		Opponent:    item.Opponent,
		ScheduledAt: item.ScheduledAt.UTC(),
		Result:      string(item.Result),
		Title:       item.Title,
		RoomURL:     item.RoomURL,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, matchTeamExternalConstraint) {
			return fmt.Errorf("%w: team=%s external_id=%s", match.ErrDuplicateExternalID, item.TeamID, item.ExternalID)
		}
		return fmt.Errorf("insert match team=%s external_id=%s: %w", item.TeamID, item.ExternalID, err)
	}
	return nil
}

// Update rewrites the mutable columns. Team and external id never change.
func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	updatedAt := item.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	query, args, err := qb.Update("matches").
		Set("season_key", item.SeasonKey).
		Set("opponent", item.Opponent).
		Set("scheduled_at", item.ScheduledAt.UTC()).
		Set("result", string(item.Result)).
		Set("title", item.Title).
		Set("room_url", item.RoomURL).
		Set("updated_at", updatedAt).
		Where(
			qb.Eq("public_id", item.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match id=%s: %w", item.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("match not found: %s", item.ID)
	}
	return nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:          row.PublicID,
		TeamID:      row.TeamID,
		ExternalID:  nullStringValue(row.ExternalID),
		SeasonKey:   row.SeasonKey,
		Opponent:    row.Opponent,
		ScheduledAt: row.ScheduledAt.UTC(),
		Result:      match.Result(row.Result),
		Title:       row.Title,
		RoomURL:     row.RoomURL,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}
