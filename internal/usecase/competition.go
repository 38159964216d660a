package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
)

// LeagueContext is the bundle of competition platform identifiers needed to
// query one team's current competition. The platform has no "current context"
// lookup so callers resolve it ahead of time.
type LeagueContext struct {
	ChampionshipID string `json:"championship_id" yaml:"championship_id" validate:"omitempty,max=128"`
	LeagueID       string `json:"league_id" yaml:"league_id" validate:"omitempty,max=128"`
	SeasonID       string `json:"season_id" yaml:"season_id" validate:"omitempty,max=128"`
	StageID        string `json:"stage_id" yaml:"stage_id" validate:"omitempty,max=128"`
	Region         string `json:"region" yaml:"region" validate:"omitempty,max=64"`
	Division       string `json:"division" yaml:"division" validate:"omitempty,max=64"`
}

// Validate names the first missing identifier.
func (c LeagueContext) Validate() error {
	if strings.TrimSpace(c.ChampionshipID) == "" {
		return fmt.Errorf("%w: championship_id", ErrMissingIdentifier)
	}
	if strings.TrimSpace(c.SeasonID) == "" {
		return fmt.Errorf("%w: season_id", ErrMissingIdentifier)
	}
	return nil
}

// SeasonKey identifies the active season this context belongs to. A change in
// the key is what triggers a season rollover.
func (c LeagueContext) SeasonKey() string {
	seasonID := strings.TrimSpace(c.SeasonID)
	stageID := strings.TrimSpace(c.StageID)
	if stageID == "" {
		return seasonID
	}
	return seasonID + ":" + stageID
}

// ExternalStandings is the canonical standings row for one team.
type ExternalStandings struct {
	Rank     int
	Wins     int
	Losses   int
	Ties     int
	Points   int
	Division string
	Region   string
}

// ToSeason converts the row, filling division and region from lc when the
// platform omitted them.
func (s ExternalStandings) ToSeason(lc LeagueContext) season.Standings {
	division := strings.TrimSpace(s.Division)
	if division == "" {
		division = strings.TrimSpace(lc.Division)
	}
	region := strings.TrimSpace(s.Region)
	if region == "" {
		region = strings.TrimSpace(lc.Region)
	}
	return season.Standings{
		Rank:     s.Rank,
		Wins:     s.Wins,
		Losses:   s.Losses,
		Ties:     s.Ties,
		Points:   s.Points,
		Division: division,
		Region:   region,
	}
}

// ExternalMatch is the canonical shape of one platform match.
type ExternalMatch struct {
	ExternalID  string
	Opponent    string
	ScheduledAt time.Time
	Result      match.Result
	RoomURL     string
}

type FetchErrorKind string

const (
	FetchErrorTimeout     FetchErrorKind = "timeout"
	FetchErrorTransport   FetchErrorKind = "transport"
	FetchErrorStatus      FetchErrorKind = "status"
	FetchErrorDecode      FetchErrorKind = "decode"
	FetchErrorUnavailable FetchErrorKind = "unavailable"
)

// FetchError is the typed failure of a competition platform call. A failed
// call never returns partial data.
type FetchError struct {
	Op         string
	Kind       FetchErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s failed (%s", e.Op, e.Kind)
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Transient reports whether the next scheduled run may succeed without any
// operator action.
func (e *FetchError) Transient() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case FetchErrorTimeout, FetchErrorTransport, FetchErrorUnavailable, FetchErrorDecode:
		return true
	case FetchErrorStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// AsFetchError unwraps err into a *FetchError when possible.
func AsFetchError(err error) (*FetchError, bool) {
	var target *FetchError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CompetitionProvider reads a team's standings and matches from the
// competition platform.
type CompetitionProvider interface {
	// FetchStandings returns false when the team has no standings row in lc.
	FetchStandings(ctx context.Context, teamExternalID string, lc LeagueContext) (ExternalStandings, bool, error)
	FetchMatches(ctx context.Context, teamExternalID string, lc LeagueContext) ([]ExternalMatch, error)
}

// LeagueContextResolver maps a team's competition key to its league context.
type LeagueContextResolver interface {
	Resolve(competitionKey string) (LeagueContext, bool)
}
