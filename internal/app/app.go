package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Volence/elemental-website-sub005/external/anubis"
	"github.com/Volence/elemental-website-sub005/external/discord"
	"github.com/Volence/elemental-website-sub005/external/faceit"
	"github.com/Volence/elemental-website-sub005/external/jobqueue"
	"github.com/Volence/elemental-website-sub005/external/natsevents"
	"github.com/Volence/elemental-website-sub005/internal/config"
	"github.com/Volence/elemental-website-sub005/internal/interfaces/httpapi"
	idgen "github.com/Volence/elemental-website-sub005/internal/platform/id"
	"github.com/Volence/elemental-website-sub005/internal/platform/logging"
	"github.com/Volence/elemental-website-sub005/internal/scheduler"
	"github.com/Volence/elemental-website-sub005/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Container holds the wired services shared by the api and syncer binaries.
type Container struct {
	Config      config.Config
	Logger      *logging.Logger
	Sync        *usecase.CompetitionSyncService
	Jobs        *usecase.JobOrchestratorService
	Lifecycle   *usecase.SeasonLifecycleService
	Verifier    httpapi.TokenVerifier
	repos       repositories
	closeEvents func()
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	catalog, err := config.LoadCompetitionCatalog(cfg.FaceItCompetitionsFile)
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		logger.Warn("competition catalog is empty, tracked teams will fail to resolve", "file", cfg.FaceItCompetitionsFile)
	}

	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, Logger: logger, repos: repos}
	ids := idgen.NewUUIDGenerator()

	provider := faceit.NewClient(faceit.ClientConfig{
		HTTPClient:     tracedHTTPClient(cfg.FaceItFetchTimeout),
		BaseURL:        cfg.FaceItBaseURL,
		MaxRetries:     cfg.FaceItMaxRetries,
		PageSize:       cfg.FaceItPageSize,
		MaxPages:       cfg.FaceItMaxPages,
		Game:           cfg.FaceItGame,
		Logger:         logger.Named("faceit"),
		CircuitBreaker: cfg.FaceItCircuit,
	})

	var publisher *usecase.AnnouncementPublisher
	if cfg.DiscordEnabled {
		messenger := discord.NewClient(discord.ClientConfig{
			BaseURL:        cfg.DiscordBaseURL,
			BotToken:       cfg.DiscordBotToken,
			Timeout:        cfg.DiscordTimeout,
			MaxRetries:     cfg.DiscordMaxRetries,
			Logger:         logger.Named("discord"),
			CircuitBreaker: cfg.DiscordCircuit,
		})
		publisher = usecase.NewAnnouncementPublisher(repos.bindings, messenger, usecase.AnnouncementPublisherConfig{
			ChannelID: cfg.DiscordChannelID,
		}, logger.Named("announcements"), nil)
	}

	events := usecase.NewNoopSyncEventPublisher()
	if cfg.NATSEnabled {
		natsCfg := natsevents.DefaultConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.SubjectPrefix = cfg.NATSSubjectPrefix
		natsPublisher, err := natsevents.Connect(natsCfg, logger.Named("nats"))
		if err != nil {
			_ = repos.close()
			return nil, err
		}
		events = natsPublisher
		c.closeEvents = natsPublisher.Close
	}

	queue := usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		qstash, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			HTTPClient:       tracedHTTPClient(10 * time.Second),
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   cfg.QStashCircuit,
		}, logger.Named("qstash"))
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		queue = qstash
	}

	c.Lifecycle = usecase.NewSeasonLifecycleService(repos.seasons, repos.archives, repos.matches, ids, logger.Named("lifecycle"), nil)
	c.Sync = usecase.NewCompetitionSyncService(usecase.CompetitionSyncDeps{
		TeamRepo:  repos.teams,
		MatchRepo: repos.matches,
		Provider:  provider,
		Lifecycle: c.Lifecycle,
		Publisher: publisher,
		Resolver:  catalog,
		Locker:    repos.locker,
		Events:    events,
		IDGen:     ids,
		Logger:    logger.Named("sync"),
	}, usecase.CompetitionSyncConfig{
		FetchTimeout: cfg.FaceItFetchTimeout,
		BatchBudget:  cfg.SyncBatchBudget,
	})
	c.Jobs = usecase.NewJobOrchestratorService(c.Sync, queue, repos.dispatches, usecase.JobOrchestratorConfig{
		ContinuationDelay: cfg.QStashContinuationDelay,
	}, logger.Named("jobs"), nil)

	if cfg.AnubisBaseURL != "" {
		c.Verifier = anubis.NewClient(anubis.ClientConfig{
			HTTPClient:     tracedHTTPClient(cfg.AnubisTimeout),
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectURL,
			AdminKey:       cfg.AnubisAdminKey,
			CacheTTL:       cfg.AnubisCacheTTL,
			CircuitBreaker: cfg.AnubisCircuit,
			Logger:         logger.Named("anubis"),
		})
	} else {
		logger.Warn("anubis is not configured, admin routes will answer 503")
	}

	logger.Info("sync engine wired",
		"competitions", catalog.Len(),
		"discord_enabled", cfg.DiscordEnabled,
		"nats_enabled", cfg.NATSEnabled,
		"qstash_enabled", cfg.QStashEnabled,
	)
	return c, nil
}

func (c *Container) Close() error {
	if c.closeEvents != nil {
		c.closeEvents()
	}
	return c.repos.close()
}

func (c *Container) NewHTTPServer() (*http.Server, error) {
	if c.Config.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.Sync, c.Jobs, c.Lifecycle, c.Logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Verifier:           c.Verifier,
		Logger:             c.Logger,
		CORSAllowedOrigins: c.Config.CORSAllowedOrigins,
		InternalJobToken:   c.Config.InternalJobToken,
		AdminRoles:         c.Config.AdminRoles,
	})

	return &http.Server{
		Addr:              c.Config.HTTPAddr,
		Handler:           router,
		ReadTimeout:       c.Config.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      c.Config.WriteTimeout,
	}, nil
}

// NewScheduler returns nil when the in-process cron is disabled.
func (c *Container) NewScheduler() (*scheduler.Scheduler, error) {
	if !c.Config.SyncCronEnabled {
		return nil, nil
	}
	return scheduler.New(scheduler.Config{
		Spec:    c.Config.SyncCronSpec,
		Timeout: c.Config.SyncBatchBudget + time.Minute,
	}, c.Jobs, c.Logger.Named("scheduler"), nil)
}

func tracedHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
