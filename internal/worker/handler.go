package worker

import (
	"context"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
)

// JobHandler defines the interface that all sweep jobs must implement.
type JobHandler interface {
	// Type returns the job type identifier. It names the job's lock and is
	// stored in sweep_runs.job_type.
	Type() string

	// Handle runs one sweep as of now. A returned report is recorded even when
	// err is non-nil.
	Handle(ctx context.Context, now time.Time) (*domain.SweepReport, error)
}

// HandlerFunc adapts a function to JobHandler.
type HandlerFunc struct {
	JobType string
	Fn      func(ctx context.Context, now time.Time) (*domain.SweepReport, error)
}

func (h HandlerFunc) Type() string {
	return h.JobType
}

func (h HandlerFunc) Handle(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
	return h.Fn(ctx, now)
}
