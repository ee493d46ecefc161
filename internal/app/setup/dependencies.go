package setup

import (
	"fmt"

	"github.com/LavaJover/credit-ledger/internal/config"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/auth"
	publisher "github.com/LavaJover/credit-ledger/internal/infrastructure/kafka"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/logger"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/metrics"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres"
	"github.com/LavaJover/credit-ledger/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/credit-ledger/internal/ledger"
	"github.com/LavaJover/credit-ledger/internal/usecase"
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config     *config.LedgerConfig
	Log        *logrus.Logger
	DB         *gorm.DB
	Registry   *prometheus.Registry
	Metrics    *metrics.LedgerMetrics
	Journal    *repository.DefaultJournalRepository
	Publisher  *publisher.DefaultKafkaPublisher
	Dispatcher *usecase.EventDispatcher
	Ledger     *ledger.Ledger
	Usecase    *usecase.DefaultLedgerUsecase
	Tokens     *auth.TokenManager
}

// InitializeDependencies wires the service. The ledger is empty until
// Usecase.Restore runs.
func InitializeDependencies(cfg *config.LedgerConfig, log *logrus.Logger) (*Dependencies, error) {
	params, err := LedgerParams(cfg)
	if err != nil {
		return nil, fmt.Errorf("ledger params: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	db, err := postgres.InitDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	var pub *publisher.DefaultKafkaPublisher
	var eventPublisher usecase.EventPublisher
	if cfg.KafkaService.Enabled && cfg.KafkaService.Host != "" {
		pub = publisher.NewDefaultKafkaPublisher(KafkaBrokers(cfg), log.WithField("component", "kafka"))
		eventPublisher = pub
	} else {
		log.Warn("kafka disabled, ledger events will not be published")
	}
	dispatcher := usecase.NewEventDispatcher(eventPublisher, cfg.KafkaService.Topic, ledgerMetrics, log.WithField("component", "events"), 0)

	journal := repository.NewDefaultJournalRepository(db)
	l, err := ledger.New(params, clock.New(), journal, dispatcher)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	uc := usecase.NewDefaultLedgerUsecase(
		l,
		logger.NewPGOperationEventLogger(db),
		journal,
		ledgerMetrics,
		log.WithField("component", "ledger"),
	)

	return &Dependencies{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Registry:   registry,
		Metrics:    ledgerMetrics,
		Journal:    journal,
		Publisher:  pub,
		Dispatcher: dispatcher,
		Ledger:     l,
		Usecase:    uc,
		Tokens:     tokens,
	}, nil
}

func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Log.WithError(err).Warn("failed to close kafka publisher")
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func KafkaBrokers(cfg *config.LedgerConfig) []string {
	return []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
}
