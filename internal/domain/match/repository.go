package match

import (
	"context"
	"errors"
)

// ErrDuplicateExternalID is returned by Create when the team already has a
// match with the same external id.
var ErrDuplicateExternalID = errors.New("match with external id already exists for team")

// Repository stores matches. Implementations must reject a second row with the
// same (TeamID, ExternalID) when ExternalID is set.
type Repository interface {
	ListByTeam(ctx context.Context, teamID string) ([]Match, error)
	ListByTeamSeason(ctx context.Context, teamID, seasonKey string) ([]Match, error)
	Create(ctx context.Context, item Match) error
	Update(ctx context.Context, item Match) error
}
