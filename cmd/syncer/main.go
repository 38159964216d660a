// Command syncer runs one competition sync batch and exits. It is meant for
// platform cron jobs that cannot call the internal job endpoint.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/app"
	"github.com/Volence/elemental-website-sub005/internal/config"
	"github.com/Volence/elemental-website-sub005/internal/observability"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	"github.com/joho/godotenv"
)

func main() {
	afterTeamID := flag.String("after", "", "resume after this team id")
	dispatchID := flag.String("dispatch-id", "", "dispatch id recorded for this run")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv, "mode", "syncer")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	obs, err := observability.Start(context.Background(), cfg, logger, observability.FeatureTracing|observability.FeatureProfiling)
	if err != nil {
		logger.Error("start observability", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.SyncBatchBudget+time.Minute)
	defer cancel()

	exitCode := run(ctx, cfg, logger, usecase.JobSyncInput{DispatchID: *dispatchID, AfterTeamID: *afterTeamID})

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := obs.Shutdown(flushCtx); err != nil {
		logger.Warn("stop observability", "error", err)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, input usecase.JobSyncInput) int {
	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	result, err := container.Jobs.RunCompetitionSync(ctx, input)
	if err != nil {
		logger.Error("competition sync failed", "error", err)
		return 1
	}
	logger.Info("competition sync finished",
		"dispatch_id", result.DispatchID,
		"teams_total", result.Batch.TeamsTotal,
		"teams_synced", result.Batch.TeamsSynced,
		"teams_failed", result.Batch.TeamsFailed,
		"teams_skipped", result.Batch.TeamsSkipped,
		"teams_deferred", result.Batch.TeamsDeferred,
		"continuation_queued", result.ContinuationQueued,
	)
	// Per-team failures are reported, not fatal; the next run retries them.
	return 0
}
