package postgres

import (
	"database/sql"

	"github.com/lib/pq"
)

type teamTableModel struct {
	PublicID        string         `db:"public_id"`
	Name            string         `db:"name"`
	ExternalTeamID  sql.NullString `db:"external_team_id"`
	CompetitionKey  sql.NullString `db:"competition_key"`
	TrackingEnabled bool           `db:"tracking_enabled"`
	CurrentSeasonID sql.NullString `db:"current_season_public_id"`
	Region          sql.NullString `db:"region"`
	Division        sql.NullString `db:"division"`
	Rating          int            `db:"rating"`
	LogoURL         sql.NullString `db:"logo_url"`
	Roster          pq.StringArray `db:"roster"`
	LastSyncedAt    sql.NullTime   `db:"last_synced_at"`
}
