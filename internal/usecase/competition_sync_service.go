package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	"github.com/Volence/elemental-website-sub005/internal/platform/id"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

const (
	syncStageResolve  = "resolve"
	syncStageFetch    = "fetch"
	syncStagePersist  = "persist"
	syncStageSeason   = "season"
	syncStageStanding = "standings"
	syncStagePanic    = "panic"
)

type CompetitionSyncConfig struct {
	// FetchTimeout bounds each competition platform call.
	FetchTimeout time.Duration
	// BatchBudget bounds one SyncAll run. Teams left when it runs out are
	// reported as deferred for the next trigger.
	BatchBudget time.Duration
}

type SyncTeamInput struct {
	TeamID string
	// Context overrides the league context resolved from the team's
	// competition key.
	Context *LeagueContext
}

type SyncAllInput struct {
	AfterTeamID string
}

type TeamSyncResult struct {
	TeamID            string `json:"team_id"`
	TeamName          string `json:"team_name,omitempty"`
	Success           bool   `json:"success"`
	MatchesCreated    int    `json:"matches_created"`
	MatchesUpdated    int    `json:"matches_updated"`
	MatchesUnchanged  int    `json:"matches_unchanged"`
	DuplicateEntries  int    `json:"duplicate_entries,omitempty"`
	SeasonKey         string `json:"season_key,omitempty"`
	SeasonRolledOver  bool   `json:"season_rolled_over"`
	ArchiveID         string `json:"archive_id,omitempty"`
	FailedStage       string `json:"failed_stage,omitempty"`
	Error             string `json:"error,omitempty"`
	AnnouncementError string `json:"announcement_error,omitempty"`
	DurationMs        int64  `json:"duration_ms"`
}

type TeamSyncError struct {
	TeamID string `json:"team_id"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

type BatchSyncResult struct {
	TeamsTotal      int              `json:"teams_total"`
	TeamsSynced     int              `json:"teams_synced"`
	TeamsFailed     int              `json:"teams_failed"`
	TeamsSkipped    int              `json:"teams_skipped"`
	TeamsDeferred   int              `json:"teams_deferred"`
	MatchesCreated  int              `json:"matches_created"`
	MatchesUpdated  int              `json:"matches_updated"`
	Errors          []TeamSyncError  `json:"errors"`
	Results         []TeamSyncResult `json:"results"`
	SkippedTeamIDs  []string         `json:"skipped_team_ids,omitempty"`
	DeferredTeamIDs []string         `json:"deferred_team_ids,omitempty"`
	// NextAfterTeamID is the cursor a continuation run starts after. Only
	// meaningful when TeamsDeferred > 0.
	NextAfterTeamID string `json:"next_after_team_id,omitempty"`
	DurationMs      int64  `json:"duration_ms"`
}

// Complete reports whether every tracked team was attempted.
func (r BatchSyncResult) Complete() bool {
	return r.TeamsDeferred == 0
}

type announcementPublisher interface {
	PublishOrUpdate(ctx context.Context, ref announcement.EntityRef, content MessageContent) (string, error)
	RepublishAll(ctx context.Context, items []AnnouncementItem) (RepublishResult, error)
}

// CompetitionSyncService drives fetch, reconcile, persist, season rollover,
// standings update and announcement for each tracked team.
type CompetitionSyncService struct {
	teamRepo  team.Repository
	matchRepo match.Repository
	provider  CompetitionProvider
	lifecycle *SeasonLifecycleService
	publisher announcementPublisher
	resolver  LeagueContextResolver
	locker    TeamLocker
	events    SyncEventPublisher
	idGen     id.Generator
	cfg       CompetitionSyncConfig
	logger    *logging.Logger
	clock     clockwork.Clock
}

type CompetitionSyncDeps struct {
	TeamRepo  team.Repository
	MatchRepo match.Repository
	Provider  CompetitionProvider
	Lifecycle *SeasonLifecycleService
	// Publisher is optional. Without it no announcements are posted.
	Publisher *AnnouncementPublisher
	Resolver  LeagueContextResolver
	Locker    TeamLocker
	Events    SyncEventPublisher
	IDGen     id.Generator
	Logger    *logging.Logger
	Clock     clockwork.Clock
}

func NewCompetitionSyncService(deps CompetitionSyncDeps, cfg CompetitionSyncConfig) *CompetitionSyncService {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.IDGen == nil {
		deps.IDGen = id.NewUUIDGenerator()
	}
	if deps.Locker == nil {
		deps.Locker = NewInProcessTeamLocker()
	}
	if deps.Events == nil {
		deps.Events = NewNoopSyncEventPublisher()
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.BatchBudget <= 0 {
		cfg.BatchBudget = 4 * time.Minute
	}

	svc := &CompetitionSyncService{
		teamRepo:  deps.TeamRepo,
		matchRepo: deps.MatchRepo,
		provider:  deps.Provider,
		lifecycle: deps.Lifecycle,
		resolver:  deps.Resolver,
		locker:    deps.Locker,
		events:    deps.Events,
		idGen:     deps.IDGen,
		cfg:       cfg,
		logger:    deps.Logger,
		clock:     deps.Clock,
	}
	if deps.Publisher != nil {
		svc.publisher = deps.Publisher
	}
	return svc
}

// SyncTeam syncs one team on demand. Only an unknown team or a sync already
// running for the team is returned as an error; every other failure is
// reported inside the result.
func (s *CompetitionSyncService) SyncTeam(ctx context.Context, input SyncTeamInput) (TeamSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncService.SyncTeam")
	defer span.End()

	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		return TeamSyncResult{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if input.Context != nil {
		if err := input.Context.Validate(); err != nil {
			return TeamSyncResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if _, err := s.getTeam(ctx, teamID); err != nil {
		return TeamSyncResult{}, err
	}

	unlock, acquired, err := s.locker.TryLock(ctx, teamID)
	if err != nil {
		return TeamSyncResult{}, fmt.Errorf("lock team=%s: %w", teamID, err)
	}
	if !acquired {
		return TeamSyncResult{}, fmt.Errorf("%w: team=%s", ErrSyncInProgress, teamID)
	}
	defer unlock()

	// The previous holder may have rolled the season over.
	item, err := s.getTeam(ctx, teamID)
	if err != nil {
		return TeamSyncResult{}, err
	}

	result := s.syncIsolated(ctx, item, input.Context)
	s.publishTeamEvent(ctx, result)
	return result, nil
}

// SyncAll syncs tracked teams one after another in id order. A failing team
// never aborts the batch.
func (s *CompetitionSyncService) SyncAll(ctx context.Context, input SyncAllInput) (BatchSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncService.SyncAll")
	defer span.End()

	startedAt := s.clock.Now()
	teams, err := s.teamRepo.ListTracked(ctx, strings.TrimSpace(input.AfterTeamID))
	if err != nil {
		return BatchSyncResult{}, fmt.Errorf("list tracked teams: %w", err)
	}

	result := BatchSyncResult{
		TeamsTotal: len(teams),
		Errors:     make([]TeamSyncError, 0),
		Results:    make([]TeamSyncResult, 0, len(teams)),
	}
	lastAttempted := strings.TrimSpace(input.AfterTeamID)

	for i, item := range teams {
		if s.clock.Since(startedAt) >= s.cfg.BatchBudget || ctx.Err() != nil {
			s.deferRemaining(&result, teams[i:], lastAttempted)
			break
		}
		lastAttempted = item.ID

		unlock, acquired, err := s.locker.TryLock(ctx, item.ID)
		if err != nil {
			result.TeamsFailed++
			result.Errors = append(result.Errors, TeamSyncError{TeamID: item.ID, Stage: syncStageResolve, Error: err.Error()})
			continue
		}
		if !acquired {
			result.TeamsSkipped++
			result.SkippedTeamIDs = append(result.SkippedTeamIDs, item.ID)
			s.logger.InfoContext(ctx, "team sync already running, skipped", "team_id", item.ID)
			continue
		}

		// The listed snapshot can predate a sync that held the lock before us.
		current, err := s.getTeam(ctx, item.ID)
		switch {
		case errors.Is(err, ErrNotFound) || (err == nil && !current.TrackingEnabled):
			unlock()
			result.TeamsSkipped++
			result.SkippedTeamIDs = append(result.SkippedTeamIDs, item.ID)
			s.logger.InfoContext(ctx, "team no longer tracked, skipped", "team_id", item.ID)
			continue
		case err != nil:
			unlock()
			result.TeamsFailed++
			result.Errors = append(result.Errors, TeamSyncError{TeamID: item.ID, Stage: syncStageResolve, Error: err.Error()})
			continue
		}

		teamResult := func() TeamSyncResult {
			defer unlock()
			return s.syncIsolated(ctx, current, nil)
		}()
		s.publishTeamEvent(ctx, teamResult)

		result.Results = append(result.Results, teamResult)
		result.MatchesCreated += teamResult.MatchesCreated
		result.MatchesUpdated += teamResult.MatchesUpdated
		if teamResult.Success {
			result.TeamsSynced++
			continue
		}
		result.TeamsFailed++
		result.Errors = append(result.Errors, TeamSyncError{
			TeamID: item.ID,
			Stage:  teamResult.FailedStage,
			Error:  teamResult.Error,
		})
	}

	result.DurationMs = s.clock.Since(startedAt).Milliseconds()
	s.logger.InfoContext(ctx, "competition batch sync finished",
		"teams_total", result.TeamsTotal,
		"teams_synced", result.TeamsSynced,
		"teams_failed", result.TeamsFailed,
		"teams_skipped", result.TeamsSkipped,
		"teams_deferred", result.TeamsDeferred,
		"matches_created", result.MatchesCreated,
		"matches_updated", result.MatchesUpdated,
		"duration_ms", result.DurationMs,
	)
	if err := s.events.PublishBatchCompleted(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "publish batch sync event failed", "error", err)
	}

	return result, nil
}

func (s *CompetitionSyncService) getTeam(ctx context.Context, teamID string) (team.Team, error) {
	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team=%s: %w", teamID, err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return item, nil
}

func (s *CompetitionSyncService) deferRemaining(result *BatchSyncResult, remaining []team.Team, lastAttempted string) {
	for _, item := range remaining {
		result.DeferredTeamIDs = append(result.DeferredTeamIDs, item.ID)
	}
	result.TeamsDeferred = len(remaining)
	// An empty cursor restarts from the first tracked team.
	result.NextAfterTeamID = lastAttempted
}

// syncIsolated runs one team and converts a panic into a failed result.
func (s *CompetitionSyncService) syncIsolated(ctx context.Context, item team.Team, override *LeagueContext) TeamSyncResult {
	var (
		catcher panics.Catcher
		result  TeamSyncResult
	)
	start := s.clock.Now()
	catcher.Try(func() {
		result = s.syncTeam(ctx, item, override)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		s.logger.ErrorContext(ctx, "team sync panicked",
			"team_id", item.ID,
			"panic", fmt.Sprint(recovered.Value),
			"stack", string(recovered.Stack),
		)
		result = TeamSyncResult{
			TeamID:      item.ID,
			TeamName:    item.Name,
			FailedStage: syncStagePanic,
			Error:       fmt.Sprintf("internal error: %v", recovered.Value),
		}
	}
	result.DurationMs = s.clock.Since(start).Milliseconds()
	return result
}

func (s *CompetitionSyncService) syncTeam(ctx context.Context, item team.Team, override *LeagueContext) TeamSyncResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncService.syncTeam", attribute.String("team.id", item.ID))
	defer span.End()

	result := TeamSyncResult{TeamID: item.ID, TeamName: item.Name}
	fail := func(stage string, err error) TeamSyncResult {
		result.Success = false
		result.FailedStage = stage
		result.Error = err.Error()
		level := s.logger.WarnContext
		if errors.Is(err, ErrMissingIdentifier) {
			level = s.logger.ErrorContext
		}
		level(ctx, "team sync failed", "team_id", item.ID, "stage", stage, "error", err)
		return result
	}

	if strings.TrimSpace(item.ExternalTeamID) == "" {
		return fail(syncStageResolve, fmt.Errorf("%w: external_team_id", ErrMissingIdentifier))
	}
	lc, err := s.resolveContext(item, override)
	if err != nil {
		return fail(syncStageResolve, err)
	}
	result.SeasonKey = lc.SeasonKey()

	external, err := s.fetchMatches(ctx, item.ExternalTeamID, lc)
	if err != nil {
		return fail(syncStageFetch, err)
	}
	standings, standingsFound, err := s.fetchStandings(ctx, item.ExternalTeamID, lc)
	if err != nil {
		return fail(syncStageFetch, err)
	}

	existing, err := s.matchRepo.ListByTeam(ctx, item.ID)
	if err != nil {
		return fail(syncStagePersist, fmt.Errorf("list matches: %w", err))
	}
	plan := ReconcileMatches(existing, external)
	result.MatchesUnchanged = len(plan.Unchanged)
	result.DuplicateEntries = plan.Duplicates
	if plan.Duplicates > 0 {
		s.logger.WarnContext(ctx, "duplicate external match ids in feed, kept first occurrence",
			"team_id", item.ID,
			"duplicates", plan.Duplicates,
		)
	}

	now := s.clock.Now().UTC()
	for _, incoming := range plan.ToCreate {
		matchID, err := s.idGen.NewID()
		if err != nil {
			return fail(syncStagePersist, fmt.Errorf("generate match id: %w", err))
		}
		created := applyExternalMatch(match.Match{
			ID:         matchID,
			TeamID:     item.ID,
			ExternalID: strings.TrimSpace(incoming.ExternalID),
			SeasonKey:  lc.SeasonKey(),
			CreatedAt:  now,
		}, incoming, item.Name)
		created.UpdatedAt = now
		if err := s.matchRepo.Create(ctx, created); err != nil {
			return fail(syncStagePersist, fmt.Errorf("create match external_id=%s: %w", incoming.ExternalID, err))
		}
		result.MatchesCreated++
	}
	for _, update := range plan.ToUpdate {
		updated := applyExternalMatch(update.Existing, update.Incoming, item.Name)
		updated.UpdatedAt = now
		if err := s.matchRepo.Update(ctx, updated); err != nil {
			return fail(syncStagePersist, fmt.Errorf("update match external_id=%s: %w", update.Incoming.ExternalID, err))
		}
		result.MatchesUpdated++
	}

	active, transition, err := s.lifecycle.EnsureActive(ctx, item, lc)
	if err != nil {
		return fail(syncStageSeason, err)
	}
	if transition.Kind == SeasonTransitionRolledOver {
		result.SeasonRolledOver = true
		if transition.Archive != nil {
			result.ArchiveID = transition.Archive.ID
		}
	}

	if standingsFound {
		active.Standings = standings.ToSeason(lc)
		if err := s.lifecycle.UpdateStandings(ctx, active.ID, active.Standings, now); err != nil {
			return fail(syncStageStanding, err)
		}
	}
	if err := s.teamRepo.MarkSynced(ctx, item.ID, now); err != nil {
		return fail(syncStageStanding, fmt.Errorf("mark team synced: %w", err))
	}
	result.Success = true

	if s.publisher != nil {
		if err := s.announce(ctx, item, active, now); err != nil {
			s.logger.WarnContext(ctx, "team announcement failed", "team_id", item.ID, "error", err)
			result.AnnouncementError = err.Error()
		}
	}

	s.logger.InfoContext(ctx, "team synced",
		"team_id", item.ID,
		"season_key", result.SeasonKey,
		"matches_created", result.MatchesCreated,
		"matches_updated", result.MatchesUpdated,
		"season_rolled_over", result.SeasonRolledOver,
	)
	return result
}

func (s *CompetitionSyncService) announce(ctx context.Context, item team.Team, active season.Season, now time.Time) error {
	matches, err := s.matchRepo.ListByTeamSeason(ctx, item.ID, active.SeasonKey)
	if err != nil {
		return fmt.Errorf("list matches for card: %w", err)
	}
	content := RenderTeamCard(item, active, matches, now)
	_, err = s.publisher.PublishOrUpdate(ctx, announcement.EntityRef{Type: announcement.EntityTeam, ID: item.ID}, content)
	return err
}

// RepublishAnnouncements rebuilds the standings channel from scratch: every
// tracked team with an active season gets a fresh card, ordered by region,
// division and rating.
func (s *CompetitionSyncService) RepublishAnnouncements(ctx context.Context) (RepublishResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionSyncService.RepublishAnnouncements")
	defer span.End()

	if s.publisher == nil {
		return RepublishResult{}, fmt.Errorf("%w: announcements are disabled", ErrDependencyUnavailable)
	}

	teams, err := s.teamRepo.ListTracked(ctx, "")
	if err != nil {
		return RepublishResult{}, fmt.Errorf("list tracked teams: %w", err)
	}

	now := s.clock.Now().UTC()
	items := make([]AnnouncementItem, 0, len(teams))
	for _, item := range teams {
		active, exists, err := s.lifecycle.Current(ctx, item)
		if err != nil {
			return RepublishResult{}, err
		}
		if !exists {
			continue
		}
		matches, err := s.matchRepo.ListByTeamSeason(ctx, item.ID, active.SeasonKey)
		if err != nil {
			return RepublishResult{}, fmt.Errorf("list matches team=%s: %w", item.ID, err)
		}
		items = append(items, AnnouncementItem{
			Ref:      announcement.EntityRef{Type: announcement.EntityTeam, ID: item.ID},
			Region:   firstNonBlank(active.Standings.Region, item.Region),
			Division: firstNonBlank(active.Standings.Division, item.Division),
			Rating:   item.Rating,
			Content:  RenderTeamCard(item, active, matches, now),
		})
	}

	result, err := s.publisher.RepublishAll(ctx, items)
	if err != nil {
		return result, err
	}
	s.logger.InfoContext(ctx, "announcements republished",
		"items", len(items),
		"deleted", result.Deleted,
		"created", result.Created,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s *CompetitionSyncService) fetchMatches(ctx context.Context, externalTeamID string, lc LeagueContext) ([]ExternalMatch, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	return s.provider.FetchMatches(fetchCtx, externalTeamID, lc)
}

func (s *CompetitionSyncService) fetchStandings(ctx context.Context, externalTeamID string, lc LeagueContext) (ExternalStandings, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()
	return s.provider.FetchStandings(fetchCtx, externalTeamID, lc)
}

func (s *CompetitionSyncService) resolveContext(item team.Team, override *LeagueContext) (LeagueContext, error) {
	var lc LeagueContext
	switch {
	case override != nil:
		lc = *override
	case s.resolver == nil:
		return LeagueContext{}, fmt.Errorf("%w: competition catalog is not configured", ErrMissingIdentifier)
	default:
		key := strings.TrimSpace(item.CompetitionKey)
		if key == "" {
			return LeagueContext{}, fmt.Errorf("%w: competition_key", ErrMissingIdentifier)
		}
		resolved, ok := s.resolver.Resolve(key)
		if !ok {
			return LeagueContext{}, fmt.Errorf("%w: competition %q is not in the catalog", ErrMissingIdentifier, key)
		}
		lc = resolved
	}

	if strings.TrimSpace(lc.Region) == "" {
		lc.Region = item.Region
	}
	if strings.TrimSpace(lc.Division) == "" {
		lc.Division = item.Division
	}
	if err := lc.Validate(); err != nil {
		return LeagueContext{}, err
	}
	return lc, nil
}

func (s *CompetitionSyncService) publishTeamEvent(ctx context.Context, result TeamSyncResult) {
	if err := s.events.PublishTeamSynced(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "publish team sync event failed", "team_id", result.TeamID, "error", err)
	}
}
