// Command sweep runs one background sweep and exits. It is meant for an
// external supervisor such as cron or a Kubernetes CronJob; a failed run
// exits non-zero so the supervisor can retry.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DukeRupert/chatquota/internal"
	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store/postgres"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sweep",
	Short:         "Run chatquota background sweeps once",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var renewalsCmd = &cobra.Command{
	Use:   "renewals",
	Short: "Renew subscription bundles whose renewal date has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), domain.JobTypeSubscriptionRenewal, false)
	},
}

var forceReset bool

var usageResetCmd = &cobra.Command{
	Use:   "usage-reset",
	Short: "Roll free-quota counters into the current month",
	Long: `Roll free-quota counters into the current month.

Without --force the sweep only acts on the first day of a UTC month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep(cmd.Context(), domain.JobTypeUsageReset, forceReset)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return internal.RunMigrations(cmd.Context(), db, logger)
	},
}

func init() {
	usageResetCmd.Flags().BoolVar(&forceReset, "force", false, "reset regardless of the day of the month")
	rootCmd.AddCommand(renewalsCmd, usageResetCmd, migrateCmd)
}

func setup(ctx context.Context) (*internal.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config initialization failed: %w", err)
	}
	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	db, err := internal.OpenDB(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

// runSweep runs jobType once through the scheduler, so the run is locked,
// recorded and archived like a scheduled one, and prints the recorded run.
func runSweep(ctx context.Context, jobType string, force bool) error {
	cfg, logger, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	st := postgres.New(db)
	svcs := internal.NewServices(st, cfg, logger)

	archive, err := internal.OpenStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}

	scheduler, err := internal.NewScheduler(db, st, svcs, archive, cfg, force, logger)
	if err != nil {
		return fmt.Errorf("scheduler initialization failed: %w", err)
	}

	run, runErr := scheduler.RunOnce(ctx, jobType)
	if run != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			logger.Warn("failed to print sweep run", "error", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("%s sweep failed: %w", jobType, runErr)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
