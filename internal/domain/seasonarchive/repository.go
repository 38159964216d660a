package seasonarchive

import "context"

type Repository interface {
	// CreateOnce stores item unless an archive already exists for
	// (TeamID, SeasonKey). It returns the stored archive and whether it was new.
	CreateOnce(ctx context.Context, item Archive) (Archive, bool, error)
	GetByID(ctx context.Context, archiveID string) (Archive, bool, error)
	GetByTeamSeason(ctx context.Context, teamID, seasonKey string) (Archive, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Archive, error)
	SetHidden(ctx context.Context, archiveID string, hidden bool) error
}
