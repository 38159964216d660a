package seasonarchive

import (
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
)

// ArchivedMatch is a frozen copy of a match played in an archived season.
type ArchivedMatch struct {
	ExternalID  string
	Opponent    string
	ScheduledAt time.Time
	Result      match.Result
	RoomURL     string
}

type Record struct {
	Wins   int
	Losses int
}

// Archive is the immutable history of one completed season. Only Hidden may
// change after creation.
type Archive struct {
	ID         string
	TeamID     string
	SeasonID   string
	SeasonKey  string
	Standings  season.Standings
	Matches    []ArchivedMatch
	Record     Record
	Hidden     bool
	ArchivedAt time.Time
}

func (a Archive) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("archive id is required")
	}
	if strings.TrimSpace(a.TeamID) == "" {
		return fmt.Errorf("archive team id is required")
	}
	if strings.TrimSpace(a.SeasonKey) == "" {
		return fmt.Errorf("archive season key is required")
	}

	return nil
}

// ComputeRecord counts wins and losses from the match results. Pending matches
// are ignored.
func ComputeRecord(items []ArchivedMatch) Record {
	var out Record
	for _, item := range items {
		switch item.Result {
		case match.ResultWin:
			out.Wins++
		case match.ResultLoss:
			out.Losses++
		}
	}
	return out
}

// SnapshotMatches copies matches into archive rows ordered by schedule.
func SnapshotMatches(items []match.Match) []ArchivedMatch {
	out := make([]ArchivedMatch, 0, len(items))
	for _, item := range items {
		out = append(out, ArchivedMatch{
			ExternalID:  item.ExternalID,
			Opponent:    item.Opponent,
			ScheduledAt: item.ScheduledAt,
			Result:      item.Result,
			RoomURL:     item.RoomURL,
		})
	}
	sortByScheduledAt(out)
	return out
}
