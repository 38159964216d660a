package team

import (
	"fmt"
	"strings"
	"time"
)

// Team is an organization roster that may be tracked on the competition platform.
// The sync engine only writes CurrentSeasonID and LastSyncedAt.
type Team struct {
	ID              string
	Name            string
	ExternalTeamID  string
	CompetitionKey  string
	TrackingEnabled bool
	CurrentSeasonID string
	Region          string
	Division        string
	Rating          int
	LogoURL         string
	Roster          []string
	LastSyncedAt    *time.Time
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// HasSeason reports whether the team already points at an active season.
func (t Team) HasSeason() bool {
	return strings.TrimSpace(t.CurrentSeasonID) != ""
}
