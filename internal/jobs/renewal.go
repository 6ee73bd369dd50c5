// Package jobs adapts the domain services to the sweep scheduler's JobHandler
// interface.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/service"
)

// RenewalJob renews subscription bundles whose renewal date has passed.
type RenewalJob struct {
	renewals service.RenewalService
	logger   *slog.Logger
}

// NewRenewalJob creates a new handler for renewal sweeps.
func NewRenewalJob(renewals service.RenewalService, logger *slog.Logger) *RenewalJob {
	return &RenewalJob{
		renewals: renewals,
		logger:   logger,
	}
}

// Type returns the job type identifier.
func (j *RenewalJob) Type() string {
	return domain.JobTypeSubscriptionRenewal
}

// Handle runs one renewal sweep. Per-bundle failures stay in the report; only
// a failure to list due bundles fails the run.
func (j *RenewalJob) Handle(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	report, err := j.renewals.ProcessRenewals(ctx, now)
	if err != nil {
		return report, err
	}

	if len(report.Errors) > 0 {
		j.logger.Warn("renewal sweep finished with bundle errors",
			"examined", report.Examined,
			"errors", len(report.Errors),
		)
	}
	return report, nil
}
