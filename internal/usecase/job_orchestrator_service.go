package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/domain/jobscheduler"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobNameSyncCompetitions = "sync-competitions"
	JobPathSyncCompetitions = "/v1/internal/jobs/sync-competitions"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobOrchestratorConfig struct {
	// ContinuationDelay is how long a deferred batch waits before the queue
	// calls back.
	ContinuationDelay time.Duration
	// DedupWindow buckets continuation ids so retried triggers collapse into
	// one queued job.
	DedupWindow time.Duration
}

type JobSyncInput struct {
	DispatchID  string
	AfterTeamID string
}

type JobSyncResult struct {
	DispatchID         string          `json:"dispatch_id,omitempty"`
	Batch              BatchSyncResult `json:"batch"`
	ContinuationQueued bool            `json:"continuation_queued"`
	ContinuationID     string          `json:"continuation_id,omitempty"`
}

type CompetitionBatchRunner interface {
	SyncAll(ctx context.Context, input SyncAllInput) (BatchSyncResult, error)
}

// JobOrchestratorService runs a batch for a trigger and, when the batch ran
// out of budget, queues a continuation through the external job queue.
type JobOrchestratorService struct {
	runner       CompetitionBatchRunner
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	clock        clockwork.Clock
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	runner CompetitionBatchRunner,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
	clock clockwork.Clock,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.ContinuationDelay < 0 {
		cfg.ContinuationDelay = 0
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = time.Minute
	}

	return &JobOrchestratorService{
		runner:       runner,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		clock:        clock,
	}
}

func (s *JobOrchestratorService) RunCompetitionSync(ctx context.Context, input JobSyncInput) (JobSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunCompetitionSync")
	defer span.End()

	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		dispatchID = dedupKey(JobNameSyncCompetitions+"-trigger", cursorScope(input.AfterTeamID), s.clock.Now(), s.cfg.DedupWindow)
	}
	trigger := jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    JobNameSyncCompetitions,
		JobPath:    JobPathSyncCompetitions,
		Scope:      cursorScope(input.AfterTeamID),
		Payload:    map[string]any{"after_team_id": input.AfterTeamID},
	}

	batch, err := s.runner.SyncAll(ctx, SyncAllInput{AfterTeamID: input.AfterTeamID})
	if err != nil {
		trigger.Status = jobscheduler.StatusFailed
		trigger.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, trigger)
		return JobSyncResult{}, fmt.Errorf("run competition sync: %w", err)
	}

	trigger.Status = jobscheduler.StatusCompleted
	if !batch.Complete() {
		trigger.Status = jobscheduler.StatusDeferred
	}
	trigger.Payload["teams_synced"] = batch.TeamsSynced
	trigger.Payload["teams_failed"] = batch.TeamsFailed
	trigger.Payload["teams_deferred"] = batch.TeamsDeferred
	s.recordDispatchEvent(ctx, trigger)

	result := JobSyncResult{
		DispatchID: dispatchID,
		Batch:      batch,
	}
	if batch.Complete() {
		return result, nil
	}

	continuationID, err := s.enqueueContinuation(ctx, batch.NextAfterTeamID)
	if err != nil {
		// The batch itself succeeded; the next cron tick picks up the rest.
		s.logger.WarnContext(ctx, "enqueue sync continuation failed",
			"after_team_id", batch.NextAfterTeamID,
			"deferred", batch.TeamsDeferred,
			"error", err,
		)
		return result, nil
	}
	result.ContinuationQueued = true
	result.ContinuationID = continuationID
	return result, nil
}

func (s *JobOrchestratorService) enqueueContinuation(ctx context.Context, afterTeamID string) (string, error) {
	now := s.clock.Now().UTC()
	cursor := cursorScope(afterTeamID)
	dedupID := dedupKey(JobNameSyncCompetitions, cursor, now.Add(s.cfg.ContinuationDelay), s.cfg.DedupWindow)
	payload := map[string]any{
		"dispatch_id":   dedupID,
		"after_team_id": afterTeamID,
	}

	if err := s.queue.Enqueue(ctx, JobPathSyncCompetitions, payload, s.cfg.ContinuationDelay, dedupID); err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dedupID,
			JobName:      JobNameSyncCompetitions,
			JobPath:      JobPathSyncCompetitions,
			Scope:        cursor,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
			OccurredAt:   now,
		})
		return "", fmt.Errorf("enqueue %s after=%s: %w", JobNameSyncCompetitions, cursor, err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    JobNameSyncCompetitions,
		JobPath:    JobPathSyncCompetitions,
		Scope:      cursor,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now,
	})
	return dedupID, nil
}

func cursorScope(afterTeamID string) string {
	if strings.TrimSpace(afterTeamID) == "" {
		return "start"
	}
	return afterTeamID
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(scope) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock.Now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
