package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	liquiddemocracy "liquido/contexts/governance/liquid-democracy"
	"liquido/contexts/governance/liquid-democracy/adapters/cache"
	"liquido/contexts/governance/liquid-democracy/adapters/events"
	postgresadapter "liquido/contexts/governance/liquid-democracy/adapters/postgres"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"
	"liquido/internal/platform/config"
	"liquido/internal/platform/db"
	"liquido/internal/platform/httpserver"
	"liquido/internal/platform/messaging"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	notificationsConsumerGroup = "liquid-notifications-cg"
	shutdownTimeout            = 10 * time.Second
)

type APIApp struct {
	server   *httpserver.Server
	module   liquiddemocracy.Module
	bus      *messaging.Kafka
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	module        liquiddemocracy.Module
	bus           *messaging.Kafka
	postgres      *db.Postgres
	sweepInterval time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	module, pg, bus, err := buildModule(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		module:   module,
		bus:      bus,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	module, pg, bus, err := buildModule(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &WorkerApp{
		module:        module,
		bus:           bus,
		postgres:      pg,
		sweepInterval: cfg.TokenSweepInterval,
		logger:        logger,
	}, nil
}

func buildModule(cfg config.Config, logger *slog.Logger) (liquiddemocracy.Module, *db.Postgres, *messaging.Kafka, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return liquiddemocracy.Module{}, nil, nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.DevSecrets {
		logger.Warn("using development hashing secrets",
			"event", "bootstrap_dev_secrets",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	policy, err := services.ParseUnrankedPolicy(cfg.UnrankedPolicy)
	if err != nil {
		return liquiddemocracy.Module{}, nil, nil, err
	}
	results, err := cache.NewPollResults(cfg.ResultCacheSize)
	if err != nil {
		return liquiddemocracy.Module{}, nil, nil, err
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return liquiddemocracy.Module{}, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := pg.Migrate(postgresadapter.AutoMigrate); err != nil {
			_ = pg.Close()
			return liquiddemocracy.Module{}, nil, nil, err
		}
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return liquiddemocracy.Module{}, nil, nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := liquiddemocracy.NewModule(liquiddemocracy.Dependencies{
		Repository:     repo,
		Transactor:     repo,
		Notifier:       events.NewNotifier(bus, cfg.ServiceName, logger),
		ResultCache:    results,
		Clock:          clockwork.NewRealClock(),
		IDGenerator:    postgresadapter.UUIDGenerator{},
		TokenGenerator: postgresadapter.RandomTokenGenerator{},
		Hasher:         services.NewHasher(cfg.RightToVoteSecret, cfg.VoterTokenSecret),
		VoterTokenTTL:  cfg.VoterTokenTTL,
		RightToVoteTTL: cfg.RightToVoteTTL,
		UnrankedPolicy: policy,
		Logger:         logger,
	})
	return module, pg, bus, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if err := a.bus.Subscribe(ctx, ports.TopicNotifications, notificationsConsumerGroup, a.module.Notifications.Handle); err != nil {
		return err
	}

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (a *APIApp) Close() error {
	return closeAll(a.bus, a.postgres)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"sweep_interval", w.sweepInterval.String(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.bus.Subscribe(groupCtx, ports.TopicNotifications, notificationsConsumerGroup, w.module.Notifications.Handle)
	})
	group.Go(func() error {
		return runEvery(groupCtx, w.sweepInterval, func(ctx context.Context) error {
			_, err := w.module.Sweeper.RunOnce(ctx)
			return err
		})
	})
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	return closeAll(w.bus, w.postgres)
}

// runEvery calls job immediately and then on every tick until ctx ends.
func runEvery(ctx context.Context, interval time.Duration, job func(context.Context) error) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := job(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func closeAll(bus *messaging.Kafka, pg *db.Postgres) error {
	var errs []error
	if bus != nil {
		errs = append(errs, bus.Close())
	}
	if pg != nil {
		errs = append(errs, pg.Close())
	}
	return errors.Join(errs...)
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
