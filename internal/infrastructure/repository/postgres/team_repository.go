package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

const teamColumns = "public_id, name, external_team_id, competition_key, tracking_enabled, current_season_public_id, region, division, rating, logo_url, roster, last_synced_at"

// TeamRepository reads teams owned by the CMS. The sync engine only writes the
// season pointer and last_synced_at.
type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListTracked(ctx context.Context, afterID string) ([]team.Team, error) {
	conditions := []qb.Condition{
		qb.Eq("tracking_enabled", true),
		qb.IsNull("deleted_at"),
	}
	if afterID = strings.TrimSpace(afterID); afterID != "" {
		conditions = append(conditions, qb.Gt("public_id", afterID))
	}

	query, args, err := qb.Select(teamColumns).From("teams").
		Where(conditions...).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tracked teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tracked teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns).From("teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}
	return teamFromRow(row), true, nil
}

func (r *TeamRepository) MarkSynced(ctx context.Context, teamID string, syncedAt time.Time) error {
	query, args, err := qb.Update("teams").
		Set("last_synced_at", syncedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark team synced query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark team synced team=%s: %w", teamID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team not found: %s", teamID)
	}
	return nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:              row.PublicID,
		Name:            row.Name,
		ExternalTeamID:  nullStringValue(row.ExternalTeamID),
		CompetitionKey:  nullStringValue(row.CompetitionKey),
		TrackingEnabled: row.TrackingEnabled,
		CurrentSeasonID: nullStringValue(row.CurrentSeasonID),
		Region:          nullStringValue(row.Region),
		Division:        nullStringValue(row.Division),
		Rating:          row.Rating,
		LogoURL:         nullStringValue(row.LogoURL),
		Roster:          append([]string(nil), row.Roster...),
		LastSyncedAt:    nullTimePtr(row.LastSyncedAt),
	}
}
