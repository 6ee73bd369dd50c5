package internal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/chatquota/internal/ai/mock"
	"github.com/DukeRupert/chatquota/internal/billing"
	"github.com/DukeRupert/chatquota/internal/jobs"
	"github.com/DukeRupert/chatquota/internal/service"
	"github.com/DukeRupert/chatquota/internal/storage"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/DukeRupert/chatquota/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenDB opens the PostgreSQL pool and checks it is reachable.
func OpenDB(ctx context.Context, cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdle)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

// Services bundles the domain services wired over one store.
type Services struct {
	Users         service.UserService
	Quota         service.QuotaService
	Chat          service.ChatService
	Subscriptions service.SubscriptionService
	Renewals      service.RenewalService
	UsageResets   service.UsageResetService
}

// NewServices wires the services with the configured AI provider and
// payment gateway.
func NewServices(st store.Store, cfg *Config, logger *slog.Logger) *Services {
	quota := service.NewQuotaService(st, logger)
	provider := mock.New(logger, mock.WithDelay(cfg.AIMinDelay, cfg.AIMaxDelay))
	gateway := billing.NewSimulatedGateway(cfg.PaymentSuccessRate, nil)

	return &Services{
		Users:         service.NewUserService(st, logger),
		Quota:         quota,
		Chat:          service.NewChatService(st, quota, provider, logger),
		Subscriptions: service.NewSubscriptionService(st, quota, logger),
		Renewals:      service.NewRenewalService(st, gateway, logger),
		UsageResets:   service.NewUsageResetService(st, logger),
	}
}

// OpenStorage returns the sweep report archive, or nil when archiving is off.
func OpenStorage(cfg *Config, logger *slog.Logger) (storage.Storage, error) {
	return storage.Open(cfg.StorageProvider,
		storage.LocalConfig{BasePath: cfg.LocalStoragePath},
		storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
			Region:          "auto",
		},
		logger,
	)
}

// NewScheduler builds the sweep scheduler with both sweeps registered.
// Runs are serialized across processes with PostgreSQL advisory locks.
// forceReset makes the usage reset run on any day instead of only the first.
func NewScheduler(db *sql.DB, st store.Store, svcs *Services, archive storage.Storage, cfg *Config, forceReset bool, logger *slog.Logger) (*worker.Scheduler, error) {
	wcfg := worker.DefaultConfig()
	wcfg.JobTimeout = cfg.SweepTimeout
	wcfg.RunOnStart = cfg.SweepRunOnStart

	scheduler, err := worker.New(st, worker.NewPGLocker(db, logger), archive, wcfg, logger)
	if err != nil {
		return nil, err
	}

	if err := scheduler.Register(jobs.NewRenewalJob(svcs.Renewals, logger), cfg.RenewalInterval); err != nil {
		return nil, err
	}
	if err := scheduler.Register(jobs.NewUsageResetJob(svcs.UsageResets, forceReset), cfg.UsageResetInterval); err != nil {
		return nil, err
	}
	return scheduler, nil
}
