package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	"github.com/Volence/elemental-website-sub005/internal/platform/id"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
)

type SeasonTransitionKind string

const (
	SeasonTransitionNone        SeasonTransitionKind = "none"
	SeasonTransitionInitialized SeasonTransitionKind = "initialized"
	SeasonTransitionRolledOver  SeasonTransitionKind = "rolled_over"
)

type SeasonTransition struct {
	Kind    SeasonTransitionKind
	Archive *seasonarchive.Archive
}

// SeasonLifecycleService keeps exactly one active season per team and moves a
// finished season into an immutable archive.
type SeasonLifecycleService struct {
	seasonRepo  season.Repository
	archiveRepo seasonarchive.Repository
	matchRepo   match.Repository
	idGen       id.Generator
	logger      *logging.Logger
	clock       clockwork.Clock
}

func NewSeasonLifecycleService(
	seasonRepo season.Repository,
	archiveRepo seasonarchive.Repository,
	matchRepo match.Repository,
	idGen id.Generator,
	logger *logging.Logger,
	clock clockwork.Clock,
) *SeasonLifecycleService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SeasonLifecycleService{
		seasonRepo:  seasonRepo,
		archiveRepo: archiveRepo,
		matchRepo:   matchRepo,
		idGen:       idGen,
		logger:      logger,
		clock:       clock,
	}
}

// EnsureActive returns the team's active season for lc. A team without a
// season gets one initialized. A team whose active season belongs to another
// season key is rolled over first.
func (s *SeasonLifecycleService) EnsureActive(ctx context.Context, item team.Team, lc LeagueContext) (season.Season, SeasonTransition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonLifecycleService.EnsureActive")
	defer span.End()

	seasonKey := lc.SeasonKey()
	if strings.TrimSpace(seasonKey) == "" {
		return season.Season{}, SeasonTransition{}, fmt.Errorf("%w: season_id", ErrMissingIdentifier)
	}

	if !item.HasSeason() {
		created, err := s.initialize(ctx, item, lc)
		if err != nil {
			return season.Season{}, SeasonTransition{}, err
		}
		return created, SeasonTransition{Kind: SeasonTransitionInitialized}, nil
	}

	current, exists, err := s.seasonRepo.GetByID(ctx, item.CurrentSeasonID)
	if err != nil {
		return season.Season{}, SeasonTransition{}, fmt.Errorf("get active season team=%s: %w", item.ID, err)
	}
	if !exists {
		// Dangling pointer: nothing to archive, replace it in place.
		next, err := s.newSeason(item.ID, lc)
		if err != nil {
			return season.Season{}, SeasonTransition{}, err
		}
		if err := s.seasonRepo.StartNext(ctx, item.CurrentSeasonID, next); err != nil {
			return season.Season{}, SeasonTransition{}, fmt.Errorf("replace dangling season team=%s: %w", item.ID, err)
		}
		s.logger.WarnContext(ctx, "replaced dangling season pointer",
			"team_id", item.ID,
			"missing_season_id", item.CurrentSeasonID,
			"season_key", seasonKey,
		)
		return next, SeasonTransition{Kind: SeasonTransitionInitialized}, nil
	}

	if current.SeasonKey == seasonKey {
		return current, SeasonTransition{Kind: SeasonTransitionNone}, nil
	}

	archive, next, err := s.rollover(ctx, item, current, lc)
	if err != nil {
		return season.Season{}, SeasonTransition{}, err
	}
	return next, SeasonTransition{Kind: SeasonTransitionRolledOver, Archive: &archive}, nil
}

// rollover archives current and swaps the team pointer to a fresh season.
// Archive creation is idempotent per (team, season key), so a rollover that
// failed after archiving can be retried safely.
func (s *SeasonLifecycleService) rollover(ctx context.Context, item team.Team, current season.Season, lc LeagueContext) (seasonarchive.Archive, season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonLifecycleService.rollover",
		attribute.String("team.id", item.ID),
		attribute.String("season.from", current.SeasonKey),
		attribute.String("season.to", lc.SeasonKey()),
	)
	defer span.End()

	matches, err := s.matchRepo.ListByTeamSeason(ctx, item.ID, current.SeasonKey)
	if err != nil {
		return seasonarchive.Archive{}, season.Season{}, fmt.Errorf("list matches for archive team=%s season=%s: %w", item.ID, current.SeasonKey, err)
	}

	archiveID, err := s.idGen.NewID()
	if err != nil {
		return seasonarchive.Archive{}, season.Season{}, fmt.Errorf("generate archive id: %w", err)
	}
	snapshot := seasonarchive.SnapshotMatches(matches)
	candidate := seasonarchive.Archive{
		ID:         archiveID,
		TeamID:     item.ID,
		SeasonID:   current.ID,
		SeasonKey:  current.SeasonKey,
		Standings:  current.Standings,
		Matches:    snapshot,
		Record:     seasonarchive.ComputeRecord(snapshot),
		ArchivedAt: s.clock.Now().UTC(),
	}

	stored, created, err := s.archiveRepo.CreateOnce(ctx, candidate)
	if err != nil {
		return seasonarchive.Archive{}, season.Season{}, fmt.Errorf("archive season team=%s season=%s: %w", item.ID, current.SeasonKey, err)
	}
	if !created {
		s.logger.WarnContext(ctx, "season archive already existed, resuming rollover",
			"team_id", item.ID,
			"season_key", current.SeasonKey,
			"archive_id", stored.ID,
		)
	}

	next, err := s.newSeason(item.ID, lc)
	if err != nil {
		return seasonarchive.Archive{}, season.Season{}, err
	}
	if err := s.seasonRepo.StartNext(ctx, current.ID, next); err != nil {
		return seasonarchive.Archive{}, season.Season{}, fmt.Errorf("start next season team=%s season=%s: %w", item.ID, next.SeasonKey, err)
	}

	s.logger.InfoContext(ctx, "season rolled over",
		"team_id", item.ID,
		"archived_season_key", current.SeasonKey,
		"archive_id", stored.ID,
		"archived_matches", len(stored.Matches),
		"wins", stored.Record.Wins,
		"losses", stored.Record.Losses,
		"season_key", next.SeasonKey,
	)
	return stored, next, nil
}

func (s *SeasonLifecycleService) initialize(ctx context.Context, item team.Team, lc LeagueContext) (season.Season, error) {
	created, err := s.newSeason(item.ID, lc)
	if err != nil {
		return season.Season{}, err
	}
	if err := s.seasonRepo.Create(ctx, created); err != nil {
		return season.Season{}, fmt.Errorf("initialize season team=%s: %w", item.ID, err)
	}
	s.logger.InfoContext(ctx, "season initialized", "team_id", item.ID, "season_key", created.SeasonKey)
	return created, nil
}

func (s *SeasonLifecycleService) newSeason(teamID string, lc LeagueContext) (season.Season, error) {
	seasonID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}
	return season.Season{
		ID:        seasonID,
		TeamID:    teamID,
		SeasonKey: lc.SeasonKey(),
		Standings: season.Standings{
			Division: strings.TrimSpace(lc.Division),
			Region:   strings.TrimSpace(lc.Region),
		},
		CreatedAt: s.clock.Now().UTC(),
	}, nil
}

// Current returns the season the team points at. A team without a season, or
// with a dangling pointer, reports false.
func (s *SeasonLifecycleService) Current(ctx context.Context, item team.Team) (season.Season, bool, error) {
	if !item.HasSeason() {
		return season.Season{}, false, nil
	}
	current, exists, err := s.seasonRepo.GetByID(ctx, item.CurrentSeasonID)
	if err != nil {
		return season.Season{}, false, fmt.Errorf("get active season team=%s: %w", item.ID, err)
	}
	return current, exists, nil
}

func (s *SeasonLifecycleService) UpdateStandings(ctx context.Context, seasonID string, standings season.Standings, syncedAt time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonLifecycleService.UpdateStandings")
	defer span.End()

	if strings.TrimSpace(seasonID) == "" {
		return fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}
	if err := s.seasonRepo.UpdateStandings(ctx, seasonID, standings, syncedAt.UTC()); err != nil {
		return fmt.Errorf("update standings season=%s: %w", seasonID, err)
	}
	return nil
}

func (s *SeasonLifecycleService) ListArchives(ctx context.Context, teamID string) ([]seasonarchive.Archive, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonLifecycleService.ListArchives")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	items, err := s.archiveRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list archives team=%s: %w", teamID, err)
	}
	return items, nil
}

// SetArchiveHidden toggles public visibility. It is the only change an archive
// accepts after creation.
func (s *SeasonLifecycleService) SetArchiveHidden(ctx context.Context, archiveID string, hidden bool) (seasonarchive.Archive, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonLifecycleService.SetArchiveHidden")
	defer span.End()

	archiveID = strings.TrimSpace(archiveID)
	if archiveID == "" {
		return seasonarchive.Archive{}, fmt.Errorf("%w: archive id is required", ErrInvalidInput)
	}
	item, exists, err := s.archiveRepo.GetByID(ctx, archiveID)
	if err != nil {
		return seasonarchive.Archive{}, fmt.Errorf("get archive=%s: %w", archiveID, err)
	}
	if !exists {
		return seasonarchive.Archive{}, fmt.Errorf("%w: archive=%s", ErrNotFound, archiveID)
	}
	if item.Hidden == hidden {
		return item, nil
	}
	if err := s.archiveRepo.SetHidden(ctx, archiveID, hidden); err != nil {
		return seasonarchive.Archive{}, fmt.Errorf("set archive hidden=%t archive=%s: %w", hidden, archiveID, err)
	}
	item.Hidden = hidden
	return item, nil
}
