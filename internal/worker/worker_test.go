package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/storage"
	"github.com/DukeRupert/chatquota/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JobTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	cfg.RunOnStart = false
	return cfg
}

func reportingJob(jobType string, calls *atomic.Int32) HandlerFunc {
	return HandlerFunc{
		JobType: jobType,
		Fn: func(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
			calls.Add(1)
			report := domain.NewSweepReport(jobType, now)
			report.Examined = 2
			return report, nil
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"job timeout too short", func(c *Config) { c.JobTimeout = 500 * time.Millisecond }, true},
		{"shutdown timeout too short", func(c *Config) { c.ShutdownTimeout = 0 }, true},
		{"empty lock prefix", func(c *Config) { c.LockPrefix = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScheduler_Register(t *testing.T) {
	s, err := New(memory.New(), NewLocalLocker(), nil, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var calls atomic.Int32
	if err := s.Register(reportingJob("a", &calls), time.Hour); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s.Register(reportingJob("a", &calls), time.Hour); err == nil {
		t.Error("expected error registering a duplicate job type")
	}
	if err := s.Register(reportingJob("b", &calls), time.Millisecond); err == nil {
		t.Error("expected error for an interval below the minimum")
	}
}

func TestScheduler_RunOnce_RecordsCompletedRun(t *testing.T) {
	st := memory.New()
	archive, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	s, err := New(st, NewLocalLocker(), archive, testConfig(), testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var calls atomic.Int32
	if err := s.Register(reportingJob(domain.JobTypeUsageReset, &calls), time.Hour); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	run, err := s.RunOnce(ctx, domain.JobTypeUsageReset)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if run.Status != domain.SweepStatusCompleted {
		t.Errorf("status = %s, want completed", run.Status)
	}
	if run.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}

	var report domain.SweepReport
	if err := json.Unmarshal(run.Details, &report); err != nil {
		t.Fatalf("details are not a report: %v", err)
	}
	if report.Examined != 2 {
		t.Errorf("examined = %d, want 2", report.Examined)
	}

	runs, err := st.ListSweepRuns(ctx, domain.JobTypeUsageReset, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != domain.SweepStatusCompleted {
		t.Errorf("unexpected recorded runs: %+v", runs)
	}

	key := storage.SweepReportKey(run.JobType, run.StartedAt, run.ID)
	exists, err := archive.Exists(ctx, key)
	if err != nil || !exists {
		t.Errorf("expected archived report at %s (err=%v)", key, err)
	}
}

func TestScheduler_RunOnce_RecordsFailure(t *testing.T) {
	st := memory.New()
	s, _ := New(st, NewLocalLocker(), nil, testConfig(), testLogger())

	boom := errors.New("boom")
	s.Register(HandlerFunc{
		JobType: "failing",
		Fn: func(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
			return nil, boom
		},
	}, time.Hour)

	run, err := s.RunOnce(context.Background(), "failing")
	if !errors.Is(err, boom) {
		t.Fatalf("RunOnce() error = %v, want boom", err)
	}
	if run.Status != domain.SweepStatusFailed || run.ErrorMessage != "boom" {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestScheduler_RunOnce_Timeout(t *testing.T) {
	s, _ := New(memory.New(), NewLocalLocker(), nil, testConfig(), testLogger())

	s.Register(HandlerFunc{
		JobType: "slow",
		Fn: func(ctx context.Context, now time.Time) (*domain.SweepReport, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}, time.Hour)

	run, err := s.RunOnce(context.Background(), "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("RunOnce() error = %v, want deadline exceeded", err)
	}
	if run.Status != domain.SweepStatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}

func TestScheduler_RunOnce_SkipsWhenLocked(t *testing.T) {
	st := memory.New()
	locker := NewLocalLocker()
	s, _ := New(st, locker, nil, testConfig(), testLogger())

	var calls atomic.Int32
	s.Register(reportingJob("locked", &calls), time.Hour)

	unlock, ok, err := locker.TryLock(context.Background(), "chatquota:locked")
	if err != nil || !ok {
		t.Fatalf("TryLock() = %v, %v", ok, err)
	}

	run, err := s.RunOnce(context.Background(), "locked")
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if run.Status != domain.SweepStatusSkipped {
		t.Errorf("status = %s, want skipped", run.Status)
	}
	if calls.Load() != 0 {
		t.Error("handler must not run while the lock is held")
	}

	unlock()
	if _, err := s.RunOnce(context.Background(), "locked"); err != nil {
		t.Fatalf("RunOnce() after unlock error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestScheduler_RunOnce_UnknownJob(t *testing.T) {
	s, _ := New(memory.New(), NewLocalLocker(), nil, testConfig(), testLogger())

	if _, err := s.RunOnce(context.Background(), "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("RunOnce() error = %v, want ErrUnknownJob", err)
	}
}

func TestScheduler_StartRunsOnStart(t *testing.T) {
	cfg := testConfig()
	cfg.RunOnStart = true
	s, _ := New(memory.New(), NewLocalLocker(), nil, cfg, testLogger())

	var calls atomic.Int32
	s.Register(reportingJob("startup", &calls), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.Stop()

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	unlock, ok, _ := l.TryLock(ctx, "x")
	if !ok {
		t.Fatal("first TryLock should succeed")
	}
	if _, ok, _ := l.TryLock(ctx, "x"); ok {
		t.Error("second TryLock should fail while held")
	}
	if _, ok, _ := l.TryLock(ctx, "y"); !ok {
		t.Error("different names are independent")
	}

	unlock()
	unlock()
	if _, ok, _ := l.TryLock(ctx, "x"); !ok {
		t.Error("TryLock should succeed after unlock")
	}
}
