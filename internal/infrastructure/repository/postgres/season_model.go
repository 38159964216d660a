package postgres

import (
	"database/sql"
	"time"
)

type seasonTableModel struct {
	PublicID     string       `db:"public_id"`
	TeamID       string       `db:"team_public_id"`
	SeasonKey    string       `db:"season_key"`
	Rank         int          `db:"standing_rank"`
	Wins         int          `db:"wins"`
	Losses       int          `db:"losses"`
	Ties         int          `db:"ties"`
	Points       int          `db:"points"`
	Division     string       `db:"division"`
	Region       string       `db:"region"`
	LastSyncedAt sql.NullTime `db:"last_synced_at"`
	CreatedAt    time.Time    `db:"created_at"`
}
