package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Volence/elemental-website-sub005/internal/config"
	"github.com/Volence/elemental-website-sub005/internal/domain/announcement"
	"github.com/Volence/elemental-website-sub005/internal/domain/jobscheduler"
	"github.com/Volence/elemental-website-sub005/internal/domain/match"
	"github.com/Volence/elemental-website-sub005/internal/domain/season"
	"github.com/Volence/elemental-website-sub005/internal/domain/seasonarchive"
	"github.com/Volence/elemental-website-sub005/internal/domain/team"
	cacherepo "github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/cache"
	"github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/memory"
	"github.com/Volence/elemental-website-sub005/internal/infrastructure/repository/postgres"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	teams      team.Repository
	matches    match.Repository
	seasons    season.Repository
	archives   seasonarchive.Repository
	bindings   announcement.Repository
	dispatches jobscheduler.Repository
	locker     usecase.TeamLocker
	db         *sqlx.DB
}

func (r repositories) close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var (
		repos repositories
		err   error
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		repos = newMemoryRepositories(cfg)
	case config.StoragePostgres:
		repos, err = newPostgresRepositories(ctx, cfg, logger)
		if err != nil {
			return repositories{}, err
		}
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.CacheEnabled {
		repos.archives = cacherepo.NewSeasonArchiveRepository(repos.archives, cfg.CacheTTL)
	}
	logger.Info("storage ready",
		"driver", cfg.StorageDriver,
		"cache_enabled", cfg.CacheEnabled,
		"seed_enabled", cfg.SeedEnabled,
	)
	return repos, nil
}

func newMemoryRepositories(cfg config.Config) repositories {
	var seeds []team.Team
	if cfg.SeedEnabled {
		seeds = memory.SeedTeams()
	}
	teams := memory.NewTeamRepository(seeds)

	return repositories{
		teams:      teams,
		matches:    memory.NewMatchRepository(),
		seasons:    memory.NewSeasonRepository(teams),
		archives:   memory.NewSeasonArchiveRepository(),
		bindings:   memory.NewAnnouncementRepository(),
		dispatches: memory.NewJobDispatchRepository(),
		locker:     usecase.NewInProcessTeamLocker(),
	}
}

func newPostgresRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	dsn := withApplicationName(cfg.DBURL, cfg.ServiceName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromDSN(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("open postgres: %w", err)
	}
	// Each in-flight team lock pins one connection for its duration.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return repositories{}, fmt.Errorf("ping postgres db=%s: %w", dbNameFromDSN(dsn), err)
	}

	if cfg.SeedEnabled {
		inserted, err := postgres.BootstrapSeed(ctx, db)
		if err != nil {
			_ = db.Close()
			return repositories{}, fmt.Errorf("seed postgres: %w", err)
		}
		logger.Info("postgres seed checked", "teams_inserted", inserted)
	}

	return repositories{
		teams:      postgres.NewTeamRepository(db),
		matches:    postgres.NewMatchRepository(db),
		seasons:    postgres.NewSeasonRepository(db),
		archives:   postgres.NewSeasonArchiveRepository(db),
		bindings:   postgres.NewAnnouncementRepository(db),
		dispatches: postgres.NewJobDispatchRepository(db),
		locker:     postgres.NewAdvisoryTeamLocker(db),
		db:         db,
	}, nil
}
