package jobs

import (
	"context"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/service"
)

// UsageResetJob rolls free-quota counters into the current month. On a normal
// tick it only acts on the reset day; a forced job resets whenever it runs.
type UsageResetJob struct {
	resets service.UsageResetService
	force  bool
}

// NewUsageResetJob creates a new handler for usage reset sweeps.
func NewUsageResetJob(resets service.UsageResetService, force bool) *UsageResetJob {
	return &UsageResetJob{resets: resets, force: force}
}

// Type returns the job type identifier.
func (j *UsageResetJob) Type() string {
	return domain.JobTypeUsageReset
}

// Handle runs one reset sweep.
func (j *UsageResetJob) Handle(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	if j.force {
		return j.resets.Reset(ctx, now)
	}
	return j.resets.ResetIfDue(ctx, now)
}
