package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/chatquota/internal"
	"github.com/DukeRupert/chatquota/internal/handler"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/middleware"
	"github.com/DukeRupert/chatquota/internal/store/postgres"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds draining in-flight requests on shutdown.
const shutdownTimeout = 30 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := internal.OpenDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	st := postgres.New(db)
	svcs := internal.NewServices(st, cfg, logger)

	archive, err := internal.OpenStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Sweep archive configured", "provider", cfg.StorageProvider)

	// =========================================================================
	// Routes
	// =========================================================================

	mux := http.NewServeMux()

	var chatLimit func(http.Handler) http.Handler
	if cfg.ChatRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute, logger)
		defer limiter.Stop()
		chatLimit = middleware.NewRateLimitMiddleware(limiter, middleware.ClientAndUserKey, logger).Limit
	}

	handler.NewChatHandler(svcs.Chat, logger).RegisterRoutes(mux, chatLimit)
	handler.NewSubscriptionHandler(svcs.Subscriptions, logger).RegisterRoutes(mux)
	handler.NewUserHandler(svcs.Users, svcs.Quota, logger).RegisterRoutes(mux)
	handler.NewHealthHandler(st, logger).RegisterRoutes(mux)

	scrapeAuth := middleware.NewScrapeAuth(cfg.MetricsUsername, cfg.MetricsPassword, logger)
	mux.Handle("GET /metrics", scrapeAuth.Wrap(promhttp.Handler()))
	if cfg.MetricsUsername == "" || cfg.MetricsPassword == "" {
		logger.Warn("Metrics endpoint is not protected, set METRICS_USERNAME and METRICS_PASSWORD")
	}

	if cfg.IsDevelopment() {
		handler.NewDevHandler(svcs.Renewals, svcs.UsageResets, svcs.Subscriptions, st, logger).RegisterRoutes(mux)
		logger.Info("Development routes enabled", "prefix", "/dev")
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, logger)
	})

	isSecure := !cfg.IsDevelopment()
	chain := middleware.Stack(
		middleware.NewRecoverMiddleware(logger).Handler,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		middleware.NewCORSMiddleware(cfg.CORSAllowedOrigins).Handler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// =========================================================================
	// Lifecycle
	// =========================================================================

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if cfg.SchedulerEnabled {
		scheduler, err := internal.NewScheduler(db, st, svcs, archive, cfg, false, logger)
		if err != nil {
			return fmt.Errorf("scheduler initialization failed: %w", err)
		}
		g.Go(func() error {
			scheduler.Start(gctx)
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
	} else {
		logger.Info("Scheduler disabled, run sweeps with cmd/sweep")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
