package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	httpapi "expedition/internal/adapters/in/http"
	"expedition/internal/adapters/out/announcement"
	memorystore "expedition/internal/adapters/out/memory/draftstore"
	"expedition/internal/adapters/out/osm"
	"expedition/internal/adapters/out/postgres"
	"expedition/internal/adapters/out/postgres/draftrepo"
	redisstore "expedition/internal/adapters/out/redis/draftstore"
	"expedition/internal/core/application/drafts"
	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/application/wizard"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/services/pricing"
	"expedition/internal/core/domain/services/validation"
	"expedition/internal/core/ports"
	"expedition/internal/jobs"
	"expedition/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs Config
	logger  *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	engine   pricing.Engine

	gormDB      *gorm.DB
	redisClient *redis.Client

	store  ports.DraftStore
	purger ports.DraftPurger

	sessions *wizard.Sessions
}

// NewCompositionRoot connects the configured draft backend and builds the wizard sessions.
func NewCompositionRoot(ctx context.Context, configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		configs:  configs,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		engine:   pricing.NewEngine(),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.metrics = metrics.New(c.registry)

	if err := c.openDraftBackend(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	repo, err := drafts.NewRepository(c.store, c.engine)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	gateway, err := announcement.NewGateway(configs.SubmissionBaseURL, nil)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	geo := osm.NewClient(osm.Config{
		NominatimURL: configs.NominatimURL,
		OSRMURL:      configs.OSRMURL,
		UserAgent:    configs.GeoUserAgent,
	}, nil)

	c.sessions, err = wizard.NewSessions(wizard.Dependencies{
		Drafts:      repo,
		Resolver:    geo,
		Geocoder:    geo,
		Gateway:     gateway,
		Quoter:      c.engine,
		Validator:   validation.NewValidator(),
		Metrics:     c.metrics,
		Logger:      logger,
		CallTimeout: configs.ExternalTimeout,
		ClientID:    configs.ClientID,
		Nudge: wizard.NudgePolicy{
			After: configs.AccountNudge,
			Fire: func(session kernel.UUID) {
				logger.Info("account creation nudge due", "session", session.String())
			},
		},
	}, configs.SessionIdleTTL)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) openDraftBackend(ctx context.Context) error {
	switch c.configs.DraftBackend {
	case BackendPostgres:
		db, err := postgres.Open(c.configs.Database())
		if err != nil {
			return err
		}
		c.gormDB = db
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate drafts table: %w", err)
		}
		repo := draftrepo.NewGormDraftRepository(db)
		c.store, c.purger = repo, repo

	case BackendRedis:
		client, err := redisstore.Connect(ctx, c.configs.RedisURL)
		if err != nil {
			return err
		}
		c.redisClient = client
		store, err := redisstore.New(client, c.configs.DraftRetention)
		if err != nil {
			return err
		}
		c.store = store

	default:
		store := memorystore.New()
		c.store, c.purger = store, store
	}
	c.logger.Info("draft backend ready", "backend", c.configs.DraftBackend)
	return nil
}

func (c *CompositionRoot) Sessions() *wizard.Sessions {
	return c.sessions
}

func (c *CompositionRoot) CreateGetQuoteQueryHandler() queries.GetQuoteQueryHandler {
	return queries.NewGetQuoteQueryHandler(c.engine, c.metrics)
}

func (c *CompositionRoot) CreateGetSessionDraftQueryHandler() (queries.GetSessionDraftQueryHandler, error) {
	return queries.NewGetSessionDraftQueryHandler(c.sessions)
}

func (c *CompositionRoot) CreateEvictIdleSessionsCommandHandler() (commands.EvictIdleSessionsCommandHandler, error) {
	return commands.NewEvictIdleSessionsCommandHandler(c.sessions)
}

// CreatePurgeStaleDraftsCommandHandler returns false when the backend expires drafts itself.
func (c *CompositionRoot) CreatePurgeStaleDraftsCommandHandler() (commands.PurgeStaleDraftsCommandHandler, bool, error) {
	if c.purger == nil {
		return commands.PurgeStaleDraftsCommandHandler{}, false, nil
	}
	h, err := commands.NewPurgeStaleDraftsCommandHandler(c.purger, nil)
	return h, err == nil, err
}

func (c *CompositionRoot) CreateServer() (*httpapi.Server, error) {
	getSessionDraftHandler, err := c.CreateGetSessionDraftQueryHandler()
	if err != nil {
		return nil, err
	}
	return httpapi.NewServer(c.sessions, c.CreateGetQuoteQueryHandler(), getSessionDraftHandler, c.logger), nil
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	evictHandler, err := c.CreateEvictIdleSessionsCommandHandler()
	if err != nil {
		return nil, err
	}
	all := []jobs.Job{jobs.NewSessionEvictionJob(evictHandler, c.configs.EvictionSchedule, c.logger)}

	purgeHandler, ok, err := c.CreatePurgeStaleDraftsCommandHandler()
	if err != nil {
		return nil, err
	}
	if ok {
		all = append(all, jobs.NewDraftPurgeJob(purgeHandler, c.configs.PurgeSchedule, c.configs.DraftRetention, c.logger))
	}
	return jobs.NewJobManager(all...), nil
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Close releases the database and redis connections.
func (c *CompositionRoot) Close() error {
	var result error
	if c.redisClient != nil {
		result = errors.Join(result, c.redisClient.Close())
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			result = errors.Join(result, sqlDB.Close())
		}
	}
	return result
}
