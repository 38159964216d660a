package season

import (
	"fmt"
	"strings"
	"time"
)

// Standings is the latest table row for a team in its active league context.
type Standings struct {
	Rank     int
	Wins     int
	Losses   int
	Ties     int
	Points   int
	Division string
	Region   string
}

// Season is the single active competition period of a team. It is mutated in
// place until a rollover replaces it.
type Season struct {
	ID           string
	TeamID       string
	SeasonKey    string
	Standings    Standings
	LastSyncedAt *time.Time
	CreatedAt    time.Time
}

func (s Season) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("season id is required")
	}
	if strings.TrimSpace(s.TeamID) == "" {
		return fmt.Errorf("season team id is required")
	}
	if strings.TrimSpace(s.SeasonKey) == "" {
		return fmt.Errorf("season key is required")
	}

	return nil
}
