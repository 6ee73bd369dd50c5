package worker

import (
	"fmt"
	"time"
)

// Config holds the configuration for the sweep scheduler.
type Config struct {
	// JobTimeout is the maximum time a single sweep run is allowed to take.
	// When exceeded, the run's context is canceled and it is recorded as failed.
	// Default: 5 minutes
	JobTimeout time.Duration

	// ShutdownTimeout is how long Stop waits for running sweeps to finish.
	// Default: 30 seconds
	ShutdownTimeout time.Duration

	// RunOnStart runs every registered job once when the scheduler starts,
	// before its first tick.
	// Default: true
	RunOnStart bool

	// LockPrefix namespaces the named locks taken per job type.
	// Default: "chatquota"
	LockPrefix string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		JobTimeout:      5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		RunOnStart:      true,
		LockPrefix:      "chatquota",
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.JobTimeout < time.Second {
		return fmt.Errorf("job timeout must be at least 1 second, got %v", c.JobTimeout)
	}
	if c.ShutdownTimeout < time.Second {
		return fmt.Errorf("shutdown timeout must be at least 1 second, got %v", c.ShutdownTimeout)
	}
	if c.LockPrefix == "" {
		return fmt.Errorf("lock prefix is required")
	}
	return nil
}

// MinInterval is the shortest accepted interval between runs of a job.
const MinInterval = time.Second
