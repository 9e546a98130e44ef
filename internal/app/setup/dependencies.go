package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/kol-payout-service/internal/config"
	"github.com/LavaJover/kol-payout-service/internal/domain"
	publisher "github.com/LavaJover/kol-payout-service/internal/infrastructure/kafka"
	runlog "github.com/LavaJover/kol-payout-service/internal/infrastructure/logger"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/metrics"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/migrate"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/notifier"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres"
	"github.com/LavaJover/kol-payout-service/internal/infrastructure/postgres/repository"
	redisstore "github.com/LavaJover/kol-payout-service/internal/infrastructure/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.PayoutConfig
	DB           *gorm.DB
	Registry     *prometheus.Registry
	Metrics      *metrics.PayoutMetrics
	Publisher    *publisher.DefaultKafkaPublisher
	Subscriber   *publisher.DefaultKafkaSubscriber
	Redis        *redis.Client
	Notifier     *notifier.HTTPNotifier
	RunLogger    domain.PayoutRunLogger
	Repositories *Repositories
}

type Repositories struct {
	LedgerRepo domain.LedgerRepository
	PayoutRepo domain.PayoutRepository
	Clicks     domain.ClickStore
}

// InitializeDependencies opens every backing service the config enables.
// Kafka, Redis and the callback notifier are optional.
func InitializeDependencies(ctx context.Context, cfg *config.PayoutConfig) (*Dependencies, error) {
	db, err := postgres.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if !cfg.PayoutDB.AutoMigrate && cfg.Migrations.Path != "" {
		if err := migrate.RunMigrations(db, cfg.Migrations.Path); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	payoutRepo, err := repository.NewDefaultPayoutRepository(db, cfg.PayoutDB.IsolationLevel)
	if err != nil {
		return nil, fmt.Errorf("payout repository: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:    cfg,
		DB:        db,
		Registry:  registry,
		Metrics:   metrics.NewPayoutMetrics(registry),
		RunLogger: runlog.NewPGPayoutRunLogger(db),
		Repositories: &Repositories{
			LedgerRepo: repository.NewDefaultLedgerRepository(db),
			PayoutRepo: payoutRepo,
		},
	}

	if cfg.KafkaService.Enabled {
		deps.Publisher = publisher.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers())
		deps.Subscriber = publisher.NewDefaultKafkaSubscriber(cfg.KafkaService.Brokers())
	}

	if cfg.RedisService.Enabled {
		client, err := redisstore.Connect(ctx, cfg.RedisService.URL)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		deps.Redis = client
		deps.Repositories.Clicks = redisstore.NewRedisClickStore(client)
	}

	if cfg.Notifier.CallbackURL != "" {
		deps.Notifier = notifier.NewHTTPNotifier(cfg.Notifier.CallbackURL)
	}
	return deps, nil
}

func (d *Dependencies) Close() error {
	var errs []error
	if d.Publisher != nil {
		errs = append(errs, d.Publisher.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		slog.Warn("failed to close dependencies", "error", err)
	}
	return err
}
