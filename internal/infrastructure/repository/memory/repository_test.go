package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
)

func TestMatchRepository_RejectsDuplicateExternalID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMatchRepository()
	first := match.Match{ID: "m1", TeamID: "t1", ExternalID: "ext_1", Result: match.ResultPending}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create first match: %v", err)
	}

	dup := match.Match{ID: "m2", TeamID: "t1", ExternalID: "ext_1", Result: match.ResultPending}
	if err := repo.Create(ctx, dup); !errors.Is(err, match.ErrDuplicateExternalID) {
		t.Fatalf("expected ErrDuplicateExternalID, got %v", err)
	}

	otherTeam := match.Match{ID: "m3", TeamID: "t2", ExternalID: "ext_1", Result: match.ResultPending}
	if err := repo.Create(ctx, otherTeam); err != nil {
		t.Fatalf("expected same external id on another team to be allowed, got %v", err)
	}

	local := match.Match{ID: "m4", TeamID: "t1", Result: match.ResultPending}
	local2 := match.Match{ID: "m5", TeamID: "t1", Result: match.ResultPending}
	if err := repo.Create(ctx, local); err != nil {
		t.Fatalf("create local match: %v", err)
	}
	if err := repo.Create(ctx, local2); err != nil {
		t.Fatalf("expected second local match without external id to be allowed, got %v", err)
	}
}

func TestSeasonRepository_StartNextComparesPointer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	teams := NewTeamRepository([]team.Team{{ID: "t1", Name: "T1", CurrentSeasonID: "s-old"}})
	seasons := NewSeasonRepository(teams, season.Season{ID: "s-old", TeamID: "t1", SeasonKey: "s1"})

	err := seasons.StartNext(ctx, "s-wrong", season.Season{ID: "s-new", TeamID: "t1", SeasonKey: "s2"})
	if !errors.Is(err, season.ErrPointerMoved) {
		t.Fatalf("expected ErrPointerMoved, got %v", err)
	}
	if _, exists, _ := seasons.GetByID(ctx, "s-new"); exists {
		t.Fatalf("expected failed swap to leave no new season behind")
	}

	if err := seasons.StartNext(ctx, "s-old", season.Season{ID: "s-new", TeamID: "t1", SeasonKey: "s2"}); err != nil {
		t.Fatalf("start next season: %v", err)
	}
	got, _, _ := teams.GetByID(ctx, "t1")
	if got.CurrentSeasonID != "s-new" {
		t.Fatalf("expected pointer s-new, got=%q", got.CurrentSeasonID)
	}
}

func TestSeasonArchiveRepository_CreateOnceIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewSeasonArchiveRepository()
	first := seasonarchive.Archive{
		ID:         "a1",
		TeamID:     "t1",
		SeasonKey:  "s1",
		Standings:  season.Standings{Rank: 13, Wins: 5, Losses: 3},
		Matches:    []seasonarchive.ArchivedMatch{{ExternalID: "ext_1", Result: match.ResultWin}},
		ArchivedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	stored, created, err := repo.CreateOnce(ctx, first)
	if err != nil || !created {
		t.Fatalf("expected first create, created=%t err=%v", created, err)
	}

	retry := first
	retry.ID = "a2"
	retry.Standings.Rank = 1
	again, created, err := repo.CreateOnce(ctx, retry)
	if err != nil {
		t.Fatalf("create once retry: %v", err)
	}
	if created {
		t.Fatalf("expected retry to return existing archive")
	}
	if again.ID != stored.ID || again.Standings.Rank != 13 {
		t.Fatalf("expected original archive, got id=%s rank=%d", again.ID, again.Standings.Rank)
	}

	stored.Matches[0].Opponent = "mutated"
	reloaded, _, _ := repo.GetByID(ctx, "a1")
	if reloaded.Matches[0].Opponent != "" {
		t.Fatalf("expected stored archive to be isolated from caller mutation")
	}
}

func TestTeamRepository_ListTrackedAfterCursor(t *testing.T) {
	t.Parallel()

	repo := NewTeamRepository(SeedTeams())
	all, err := repo.ListTracked(context.Background(), "")
	if err != nil {
		t.Fatalf("list tracked: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tracked teams, got=%d", len(all))
	}

	rest, _ := repo.ListTracked(context.Background(), all[0].ID)
	if len(rest) != 1 || rest[0].ID != all[1].ID {
		t.Fatalf("expected cursor to skip first team, got=%+v", rest)
	}
}
