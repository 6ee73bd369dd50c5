package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sweep job types.
const (
	JobTypeSubscriptionRenewal = "subscription_renewal"
	JobTypeUsageReset          = "usage_reset"
)

// SweepStatus is the state of a recorded sweep run.
type SweepStatus string

const (
	SweepStatusRunning   SweepStatus = "running"
	SweepStatusCompleted SweepStatus = "completed"
	SweepStatusFailed    SweepStatus = "failed"
	SweepStatusSkipped   SweepStatus = "skipped"
)

// IsTerminal reports whether the run has finished.
func (s SweepStatus) IsTerminal() bool {
	return s == SweepStatusCompleted || s == SweepStatusFailed || s == SweepStatusSkipped
}

// SweepRun records one execution of a background sweep.
type SweepRun struct {
	ID           uuid.UUID       `json:"id"`
	JobType      string          `json:"job_type"`
	Status       SweepStatus     `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while running.
func (r *SweepRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SweepReport summarizes what a sweep did. Per-item failures land in Errors
// without aborting the sweep.
type SweepReport struct {
	JobType     string    `json:"job_type"`
	RanAt       time.Time `json:"ran_at"`
	Examined    int       `json:"examined"`
	Renewed     int       `json:"renewed,omitempty"`
	Deactivated int       `json:"deactivated,omitempty"`
	Created     int       `json:"created,omitempty"`
	Reset       int       `json:"reset,omitempty"`
	Skipped     bool      `json:"skipped,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
}

// NewSweepReport starts an empty report for jobType.
func NewSweepReport(jobType string, now time.Time) *SweepReport {
	return &SweepReport{JobType: jobType, RanAt: now}
}

// AddError records a per-item failure.
func (r *SweepReport) AddError(err error) {
	r.Errors = append(r.Errors, err.Error())
}
