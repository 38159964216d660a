package postgres

import (
	"context"
	"fmt"

	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	"github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/memory"
	qb "github.com/Volence/elemental-website-sub005/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// seedLockKey serializes concurrent boots racing to seed the same database.
const seedLockKey int64 = 0x5eed7ea5

type teamSeedModel struct {
	PublicID        string         `db:"public_id"`
	Name            string         `db:"name"`
	ExternalTeamID  *string        `db:"external_team_id"`
	CompetitionKey  *string        `db:"competition_key"`
	TrackingEnabled bool           `db:"tracking_enabled"`
	Region          *string        `db:"region"`
	Division        *string        `db:"division"`
	Rating          int            `db:"rating"`
	Roster          pq.StringArray `db:"roster"`
}

func newTeamSeedModel(t team.Team) teamSeedModel {
	return teamSeedModel{
		PublicID:        t.ID,
		Name:            t.Name,
		ExternalTeamID:  optionalString(t.ExternalTeamID),
		CompetitionKey:  optionalString(t.CompetitionKey),
		TrackingEnabled: t.TrackingEnabled,
		Region:          optionalString(t.Region),
		Division:        optionalString(t.Division),
		Rating:          t.Rating,
		Roster:          pq.StringArray(t.Roster),
	}
}

// BootstrapSeed fills an empty teams table with the demo catalog and reports
// how many rows it inserted. A database that already has teams is untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return 0, fmt.Errorf("lock seed: %w", err)
	}

	var existing bool
	if err := tx.GetContext(ctx, &existing, `SELECT EXISTS (SELECT 1 FROM teams WHERE deleted_at IS NULL)`); err != nil {
		return 0, fmt.Errorf("check teams before seed: %w", err)
	}
	if existing {
		return 0, nil
	}

	inserted := 0
	for _, t := range memory.SeedTeams() {
		query, args, err := qb.InsertModel("teams", newTeamSeedModel(t), "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return 0, fmt.Errorf("build seed insert team=%s: %w", t.ID, err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("seed team=%s: %w", t.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return inserted, nil
}
