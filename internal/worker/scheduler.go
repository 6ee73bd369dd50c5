// Package worker runs the periodic sweeps: each registered job fires on its
// own ticker, holds a named lock while it runs, and leaves a sweep_runs row
// behind as its audit trail.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/metrics"
	"github.com/DukeRupert/chatquota/internal/storage"
	"github.com/DukeRupert/chatquota/internal/store"
)

// ErrUnknownJob is returned by RunOnce for an unregistered job type.
var ErrUnknownJob = errors.New("unknown job type")

// recordTimeout bounds writing the final sweep_runs row after a run ends.
const recordTimeout = 10 * time.Second

type schedule struct {
	handler  JobHandler
	interval time.Duration
}

// Scheduler manages the periodic sweep jobs.
type Scheduler struct {
	runs    store.SweepRuns
	locker  Locker
	archive storage.Storage // nil disables archiving
	config  Config
	logger  *slog.Logger
	now     func() time.Time

	jobs  map[string]schedule
	order []string

	// Synchronization
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new Scheduler. archive may be nil.
// The scheduler must be started with Start() and stopped with Stop().
func New(runs store.SweepRuns, locker Locker, archive storage.Storage, config Config, logger *slog.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scheduler{
		runs:    runs,
		locker:  locker,
		archive: archive,
		config:  config,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		jobs:    make(map[string]schedule),
		stopCh:  make(chan struct{}),
	}, nil
}

// Register adds a job that runs every interval. The handler's Type() must be
// unique. Call this before Start().
func (s *Scheduler) Register(handler JobHandler, interval time.Duration) error {
	jobType := handler.Type()
	if _, exists := s.jobs[jobType]; exists {
		return fmt.Errorf("job %q already registered", jobType)
	}
	if interval < MinInterval {
		return fmt.Errorf("job %q: interval must be at least %v, got %v", jobType, MinInterval, interval)
	}

	s.jobs[jobType] = schedule{handler: handler, interval: interval}
	s.order = append(s.order, jobType)
	s.logger.Debug("registered sweep job", "job_type", jobType, "interval", interval)
	return nil
}

// Start launches one loop per registered job. Loops end when ctx is done or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	for _, jobType := range s.order {
		s.wg.Add(1)
		go s.loop(ctx, s.jobs[jobType])
	}

	s.logger.Info("scheduler started", "jobs", len(s.order), "run_on_start", s.config.RunOnStart)
}

// Stop signals all loops to stop and waits for running sweeps to finish,
// up to the configured ShutdownTimeout.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.stopOnce.Do(func() { close(s.stopCh) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped gracefully")
	case <-time.After(s.config.ShutdownTimeout):
		s.logger.Warn("scheduler shutdown timeout exceeded, a sweep may still be running")
	}
}

func (s *Scheduler) loop(ctx context.Context, job schedule) {
	defer s.wg.Done()

	logger := s.logger.With("job_type", job.handler.Type())

	if s.config.RunOnStart {
		s.runLogged(ctx, job.handler.Type(), logger)
	}

	ticker := time.NewTicker(job.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runLogged(ctx, job.handler.Type(), logger)
		}
	}
}

// runLogged runs a job and swallows its error; a failed run never stops the loop.
func (s *Scheduler) runLogged(ctx context.Context, jobType string, logger *slog.Logger) {
	if _, err := s.RunOnce(ctx, jobType); err != nil && ctx.Err() == nil {
		logger.Error("sweep run failed", "error", err)
	}
}

// RunOnce executes one run of jobType now and records it. A run that finds
// the job's lock held is recorded as skipped and returns a nil error.
func (s *Scheduler) RunOnce(ctx context.Context, jobType string) (*domain.SweepRun, error) {
	job, ok := s.jobs[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobType)
	}

	unlock, acquired, err := s.locker.TryLock(ctx, s.config.LockPrefix+":"+jobType)
	if err != nil {
		metrics.JobFailed(jobType, 0)
		return nil, fmt.Errorf("lock %s: %w", jobType, err)
	}
	if !acquired {
		return s.recordSkipped(ctx, jobType)
	}
	defer unlock()

	start := s.now()
	run := &domain.SweepRun{
		JobType:   jobType,
		Status:    domain.SweepStatusRunning,
		StartedAt: start,
	}
	if err := s.runs.CreateSweepRun(ctx, run); err != nil {
		metrics.JobFailed(jobType, 0)
		return nil, fmt.Errorf("record sweep run: %w", err)
	}

	logger := s.logger.With("job_type", jobType, "run_id", run.ID)
	logger.Info("sweep run started")

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	report, jobErr := job.handler.Handle(jobCtx, start)
	cancel()

	finished := s.now()
	duration := finished.Sub(start)
	run.FinishedAt = &finished
	run.Status = domain.SweepStatusCompleted
	if jobErr != nil {
		run.Status = domain.SweepStatusFailed
		run.ErrorMessage = jobErr.Error()
	}
	if report != nil {
		details, err := json.Marshal(report)
		if err != nil {
			logger.Error("failed to encode sweep report", "error", err)
		} else {
			run.Details = details
		}
	}

	recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancelRecord()
	if err := s.runs.FinishSweepRun(recordCtx, run); err != nil {
		logger.Error("failed to record sweep result", "error", err)
	}

	if jobErr != nil {
		metrics.JobFailed(jobType, duration)
		logger.Error("sweep run failed",
			"duration_ms", duration.Milliseconds(),
			"error", jobErr,
		)
	} else {
		metrics.JobCompleted(jobType, duration)
		attrs := []any{"duration_ms", duration.Milliseconds()}
		if report != nil {
			attrs = append(attrs, "examined", report.Examined, "item_errors", len(report.Errors))
		}
		logger.Info("sweep run completed", attrs...)
	}

	s.archiveRun(recordCtx, run, logger)
	return run, jobErr
}

func (s *Scheduler) recordSkipped(ctx context.Context, jobType string) (*domain.SweepRun, error) {
	now := s.now()
	run := &domain.SweepRun{
		JobType:    jobType,
		Status:     domain.SweepStatusSkipped,
		StartedAt:  now,
		FinishedAt: &now,
	}
	if err := s.runs.CreateSweepRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record skipped sweep run: %w", err)
	}
	run.FinishedAt = &now
	if err := s.runs.FinishSweepRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record skipped sweep run: %w", err)
	}

	metrics.JobSkipped(jobType)
	s.logger.Info("sweep run skipped, another run holds the lock",
		"job_type", jobType,
		"run_id", run.ID,
	)
	return run, nil
}

func (s *Scheduler) archiveRun(ctx context.Context, run *domain.SweepRun, logger *slog.Logger) {
	if s.archive == nil || len(run.Details) == 0 {
		return
	}

	key, err := storage.ArchiveSweepRun(ctx, s.archive, run)
	if err != nil {
		logger.Warn("failed to archive sweep report", "error", err)
		return
	}
	logger.Debug("archived sweep report", "key", key)
}
