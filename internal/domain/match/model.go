package match

import (
	"fmt"
	"strings"
	"time"
)

type Result string

const (
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultPending Result = "pending"
)

// NormalizeResult maps free-form provider values onto the three stored results.
func NormalizeResult(raw string) Result {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "win", "won", "w", "victory":
		return ResultWin
	case "loss", "lost", "lose", "l", "defeat":
		return ResultLoss
	default:
		return ResultPending
	}
}

// Match is one fixture of a team. ExternalID is empty for matches entered by hand.
type Match struct {
	ID          string
	TeamID      string
	ExternalID  string
	SeasonKey   string
	Opponent    string
	ScheduledAt time.Time
	Result      Result
	Title       string
	RoomURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.TeamID) == "" {
		return fmt.Errorf("match team id is required")
	}
	switch m.Result {
	case ResultWin, ResultLoss, ResultPending:
	default:
		return fmt.Errorf("invalid match result: %q", m.Result)
	}

	return nil
}

// BuildTitle returns the denormalized "Team vs Opponent" label.
func BuildTitle(teamName, opponent string) string {
	teamName = strings.TrimSpace(teamName)
	opponent = strings.TrimSpace(opponent)
	if opponent == "" {
		opponent = "TBD"
	}
	if teamName == "" {
		return "vs " + opponent
	}
	return teamName + " vs " + opponent
}
