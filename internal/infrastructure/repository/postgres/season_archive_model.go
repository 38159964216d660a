package postgres

import (
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
)

type seasonArchiveTableModel struct {
	PublicID   string    `db:"public_id"`
	TeamID     string    `db:"team_public_id"`
	SeasonID   string    `db:"season_public_id"`
	SeasonKey  string    `db:"season_key"`
	Standings  []byte    `db:"standings"`
	Matches    []byte    `db:"matches"`
	Wins       int       `db:"wins"`
	Losses     int       `db:"losses"`
	Hidden     bool      `db:"hidden"`
	ArchivedAt time.Time `db:"archived_at"`
}

type seasonArchiveInsertModel struct {
	PublicID   string    `db:"public_id"`
	TeamID     string    `db:"team_public_id"`
	SeasonID   string    `db:"season_public_id"`
	SeasonKey  string    `db:"season_key"`
	Standings  string    `db:"standings"`
	Matches    string    `db:"matches"`
	Wins       int       `db:"wins"`
	Losses     int       `db:"losses"`
	Hidden     bool      `db:"hidden"`
	ArchivedAt time.Time `db:"archived_at"`
}

type archivedStandingsJSON struct {
	Rank     int    `json:"rank"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Ties     int    `json:"ties"`
	Points   int    `json:"points"`
	Division string `json:"division,omitempty"`
	Region   string `json:"region,omitempty"`
}

type archivedMatchJSON struct {
	ExternalID  string    `json:"external_id,omitempty"`
	Opponent    string    `json:"opponent"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Result      string    `json:"result"`
	RoomURL     string    `json:"room_url,omitempty"`
}

func archiveToInsertModel(item seasonarchive.Archive) (seasonArchiveInsertModel, error) {
	standings, err := encodeJSON(archivedStandingsJSON(item.Standings))
	if err != nil {
		return seasonArchiveInsertModel{}, err
	}
	matches := make([]archivedMatchJSON, 0, len(item.Matches))
	for _, m := range item.Matches {
		matches = append(matches, archivedMatchJSON{
			ExternalID:  m.ExternalID,
			Opponent:    m.Opponent,
			ScheduledAt: m.ScheduledAt.UTC(),
			Result:      string(m.Result),
			RoomURL:     m.RoomURL,
		})
	}
	matchesJSON, err := encodeJSON(matches)
	if err != nil {
		return seasonArchiveInsertModel{}, err
	}

	return seasonArchiveInsertModel{
		PublicID:   item.ID,
		TeamID:     item.TeamID,
		SeasonID:   item.SeasonID,
		SeasonKey:  item.SeasonKey,
		Standings:  standings,
		Matches:    matchesJSON,
		Wins:       item.Record.Wins,
		Losses:     item.Record.Losses,
		Hidden:     item.Hidden,
		ArchivedAt: item.ArchivedAt.UTC(),
	}, nil
}

func archiveFromRow(row seasonArchiveTableModel) (seasonarchive.Archive, error) {
	var standings archivedStandingsJSON
	if err := decodeJSON(row.Standings, &standings); err != nil {
		return seasonarchive.Archive{}, err
	}
	var matches []archivedMatchJSON
	if err := decodeJSON(row.Matches, &matches); err != nil {
		return seasonarchive.Archive{}, err
	}

	out := seasonarchive.Archive{
		ID:         row.PublicID,
		TeamID:     row.TeamID,
		SeasonID:   row.SeasonID,
		SeasonKey:  row.SeasonKey,
		Standings:  season.Standings(standings),
		Matches:    make([]seasonarchive.ArchivedMatch, 0, len(matches)),
		Record:     seasonarchive.Record{Wins: row.Wins, Losses: row.Losses},
		Hidden:     row.Hidden,
		ArchivedAt: row.ArchivedAt.UTC(),
	}
	for _, m := range matches {
		out.Matches = append(out.Matches, seasonarchive.ArchivedMatch{
			ExternalID:  m.ExternalID,
			Opponent:    m.Opponent,
			ScheduledAt: m.ScheduledAt.UTC(),
			Result:      match.Result(m.Result),
			RoomURL:     m.RoomURL,
		})
	}
	return out, nil
}
