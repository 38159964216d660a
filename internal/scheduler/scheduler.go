// Package scheduler drives the batch sync from an in-process cron for
// deployments that have no external trigger.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

type Runner interface {
	RunCompetitionSync(ctx context.Context, input usecase.JobSyncInput) (usecase.JobSyncResult, error)
}

type Config struct {
	// Spec accepts standard 5-field expressions and descriptors like "@every 15m".
	Spec string
	// Timeout bounds one tick. It should exceed the batch budget.
	Timeout time.Duration
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	cfg    Config
	logger *logging.Logger
	clock  clockwork.Clock
}

func New(cfg Config, runner Runner, logger *logging.Logger, clock clockwork.Clock) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler runner is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cfg.Spec = strings.TrimSpace(cfg.Spec)
	if cfg.Spec == "" {
		return nil, fmt.Errorf("scheduler cron spec is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	s := &Scheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger,
		clock:  clock,
	}
	cronLog := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.cron.AddFunc(cfg.Spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse cron spec %q: %w", cfg.Spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting sync scheduler", "spec", s.cfg.Spec, "timeout", s.cfg.Timeout.String())
	s.cron.Start()
}

// Stop prevents new ticks and waits for a running one until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	dispatchID := "cron-" + s.clock.Now().UTC().Format("20060102T150405Z")
	result, err := s.runner.RunCompetitionSync(ctx, usecase.JobSyncInput{DispatchID: dispatchID})
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled competition sync failed", "dispatch_id", dispatchID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "scheduled competition sync finished",
		"dispatch_id", dispatchID,
		"teams_synced", result.Batch.TeamsSynced,
		"teams_failed", result.Batch.TeamsFailed,
		"teams_deferred", result.Batch.TeamsDeferred,
		"continuation_queued", result.ContinuationQueued,
	)
}

// cronLogger adapts the service logger to cron's key/value logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
