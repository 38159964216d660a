package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	"github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/memory"
	matchmock "github.com/Volence/elemental-website-sub005/internal/mocks/domain/match"
	seasonmock "github.com/Volence/elemental-website-sub005/internal/mocks/domain/season"
	seasonarchivemock "github.com/Volence/elemental-website-sub005/internal/mocks/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/platform/id"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
)

func TestSeasonLifecycle_InitializesFirstSeason(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := memory.NewTeamRepository([]team.Team{{ID: "team-1", Name: "Elemental", TrackingEnabled: true}})
	seasons := memory.NewSeasonRepository(teams)
	svc := NewSeasonLifecycleService(seasons, memory.NewSeasonArchiveRepository(), memory.NewMatchRepository(), id.NewSequenceGenerator("s"), logging.NewNop(), clockwork.NewFakeClock())

	item, _, _ := teams.GetByID(ctx, "team-1")
	active, transition, err := svc.EnsureActive(ctx, item, LeagueContext{ChampionshipID: "c", SeasonID: "s1", Region: "NA", Division: "Open"})
	if err != nil {
		t.Fatalf("ensure active: %v", err)
	}
	if transition.Kind != SeasonTransitionInitialized {
		t.Fatalf("expected initialized, got=%s", transition.Kind)
	}
	if active.SeasonKey != "s1" || active.Standings.Region != "NA" || active.Standings.Division != "Open" {
		t.Fatalf("unexpected season: %+v", active)
	}
	updated, _, _ := teams.GetByID(ctx, "team-1")
	if updated.CurrentSeasonID != active.ID {
		t.Fatalf("expected team pointer %s, got=%s", active.ID, updated.CurrentSeasonID)
	}
}

func TestSeasonLifecycle_SameKeyIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seasonRepo := seasonmock.NewRepository(t)
	archiveRepo := seasonarchivemock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	svc := NewSeasonLifecycleService(seasonRepo, archiveRepo, matchRepo, id.NewSequenceGenerator("s"), logging.NewNop(), clockwork.NewFakeClock())

	current := season.Season{ID: "season-1", TeamID: "team-1", SeasonKey: "s1", Standings: season.Standings{Rank: 4}}
	seasonRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v != nil }), "season-1").
		Return(current, true, nil).
		Once()

	got, transition, err := svc.EnsureActive(ctx, team.Team{ID: "team-1", CurrentSeasonID: "season-1"}, LeagueContext{ChampionshipID: "c", SeasonID: "s1"})
	if err != nil {
		t.Fatalf("ensure active: %v", err)
	}
	if transition.Kind != SeasonTransitionNone || got.Standings.Rank != 4 {
		t.Fatalf("expected untouched season, got=%+v transition=%s", got, transition.Kind)
	}
}

func TestSeasonLifecycle_RolloverSnapshotsMatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	seasonRepo := seasonmock.NewRepository(t)
	archiveRepo := seasonarchivemock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	svc := NewSeasonLifecycleService(seasonRepo, archiveRepo, matchRepo, id.NewSequenceGenerator("gen"), logging.NewNop(), clock)

	item := team.Team{ID: "team-1", CurrentSeasonID: "season-1"}
	current := season.Season{ID: "season-1", TeamID: "team-1", SeasonKey: "s1", Standings: season.Standings{Rank: 13, Wins: 5, Losses: 3}}
	played := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	rows := []match.Match{
		{ID: "m2", TeamID: "team-1", ExternalID: "ext_2", Opponent: "Echo", ScheduledAt: played.Add(time.Hour), Result: match.ResultLoss, SeasonKey: "s1"},
		{ID: "m1", TeamID: "team-1", ExternalID: "ext_1", Opponent: "Nova", ScheduledAt: played, Result: match.ResultWin, SeasonKey: "s1"},
	}

	seasonRepo.
		On("GetByID", mock.Anything, "season-1").
		Return(current, true, nil).
		Once()
	matchRepo.
		On("ListByTeamSeason", mock.Anything, "team-1", "s1").
		Return(rows, nil).
		Once()
	archiveRepo.
		On("CreateOnce", mock.Anything, mock.MatchedBy(func(a seasonarchive.Archive) bool {
			return a.SeasonKey == "s1" &&
				a.SeasonID == "season-1" &&
				a.Standings.Rank == 13 &&
				len(a.Matches) == 2 &&
				a.Matches[0].ExternalID == "ext_1" &&
				a.Record == seasonarchive.Record{Wins: 1, Losses: 1}
		})).
		Return(func(_ context.Context, a seasonarchive.Archive) (seasonarchive.Archive, bool, error) {
			return a, true, nil
		}).
		Once()
	seasonRepo.
		On("StartNext", mock.Anything, "season-1", mock.MatchedBy(func(next season.Season) bool {
			return next.SeasonKey == "s2:playoffs" && next.Standings.Rank == 0 && next.CreatedAt.Equal(clock.Now().UTC())
		})).
		Return(nil).
		Once()

	next, transition, err := svc.EnsureActive(ctx, item, LeagueContext{ChampionshipID: "c", SeasonID: "s2", StageID: "playoffs"})
	if err != nil {
		t.Fatalf("ensure active: %v", err)
	}
	if transition.Kind != SeasonTransitionRolledOver || transition.Archive == nil {
		t.Fatalf("expected rollover with archive, got=%+v", transition)
	}
	if next.SeasonKey != "s2:playoffs" {
		t.Fatalf("expected next season key s2:playoffs, got=%s", next.SeasonKey)
	}
}

func TestSeasonLifecycle_RolloverStopsWhenArchiveFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seasonRepo := seasonmock.NewRepository(t)
	archiveRepo := seasonarchivemock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	svc := NewSeasonLifecycleService(seasonRepo, archiveRepo, matchRepo, id.NewSequenceGenerator("gen"), logging.NewNop(), clockwork.NewFakeClock())

	seasonRepo.On("GetByID", mock.Anything, "season-1").Return(season.Season{ID: "season-1", SeasonKey: "s1"}, true, nil).Once()
	matchRepo.On("ListByTeamSeason", mock.Anything, "team-1", "s1").Return([]match.Match{}, nil).Once()
	archiveRepo.On("CreateOnce", mock.Anything, mock.Anything).Return(seasonarchive.Archive{}, false, errors.New("disk full")).Once()

	_, _, err := svc.EnsureActive(ctx, team.Team{ID: "team-1", CurrentSeasonID: "season-1"}, LeagueContext{ChampionshipID: "c", SeasonID: "s2"})
	if err == nil {
		t.Fatalf("expected rollover error")
	}
	seasonRepo.AssertNotCalled(t, "StartNext", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeasonLifecycle_ReplacesDanglingPointer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := memory.NewTeamRepository([]team.Team{{ID: "team-1", CurrentSeasonID: "season-gone", TrackingEnabled: true}})
	seasons := memory.NewSeasonRepository(teams)
	archives := memory.NewSeasonArchiveRepository()
	svc := NewSeasonLifecycleService(seasons, archives, memory.NewMatchRepository(), id.NewSequenceGenerator("s"), logging.NewNop(), clockwork.NewFakeClock())

	item, _, _ := teams.GetByID(ctx, "team-1")
	active, transition, err := svc.EnsureActive(ctx, item, LeagueContext{ChampionshipID: "c", SeasonID: "s1"})
	if err != nil {
		t.Fatalf("ensure active: %v", err)
	}
	if transition.Kind != SeasonTransitionInitialized {
		t.Fatalf("expected initialized, got=%s", transition.Kind)
	}
	updated, _, _ := teams.GetByID(ctx, "team-1")
	if updated.CurrentSeasonID != active.ID {
		t.Fatalf("expected pointer to move to %s, got=%s", active.ID, updated.CurrentSeasonID)
	}
	list, _ := archives.ListByTeam(ctx, "team-1")
	if len(list) != 0 {
		t.Fatalf("expected no archive for dangling pointer, got=%d", len(list))
	}
}

func TestSeasonLifecycle_MissingSeasonKey(t *testing.T) {
	t.Parallel()

	svc := NewSeasonLifecycleService(nil, nil, nil, nil, logging.NewNop(), nil)
	_, _, err := svc.EnsureActive(context.Background(), team.Team{ID: "team-1"}, LeagueContext{ChampionshipID: "c"})
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
}

func TestSeasonLifecycle_SetArchiveHidden(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	archiveRepo := seasonarchivemock.NewRepository(t)
	svc := NewSeasonLifecycleService(nil, archiveRepo, nil, nil, logging.NewNop(), nil)

	stored := seasonarchive.Archive{ID: "archive-1", TeamID: "team-1", SeasonKey: "s1"}
	archiveRepo.On("GetByID", mock.Anything, "archive-1").Return(stored, true, nil).Once()
	archiveRepo.On("SetHidden", mock.Anything, "archive-1", true).Return(nil).Once()
	archiveRepo.On("GetByID", mock.Anything, "missing").Return(seasonarchive.Archive{}, false, nil).Once()

	got, err := svc.SetArchiveHidden(ctx, "archive-1", true)
	if err != nil {
		t.Fatalf("set hidden: %v", err)
	}
	if !got.Hidden {
		t.Fatalf("expected hidden archive")
	}
	if _, err := svc.SetArchiveHidden(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.SetArchiveHidden(ctx, " ", true); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
