package postgres

import (
	"database/sql"
	"time"
)

const matchTeamExternalConstraint = "matches_team_external_uidx"

type matchTableModel struct {
	PublicID    string         `db:"public_id"`
	TeamID      string         `db:"team_public_id"`
	ExternalID  sql.NullString `db:"external_id"`
	SeasonKey   string         `db:"season_key"`
	Opponent    string         `db:"opponent"`
	ScheduledAt time.Time      `db:"scheduled_at"`
	Result      string         `db:"result"`
	Title       string         `db:"title"`
	RoomURL     string         `db:"room_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	PublicID    string    `db:"public_id"`
	TeamID      string    `db:"team_public_id"`
	ExternalID  *string   `db:"external_id"`
	SeasonKey   string    `db:"season_key"`
	Opponent    string    `db:"opponent"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Result      string    `db:"result"`
	Title       string    `db:"title"`
	RoomURL     string    `db:"room_url"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
