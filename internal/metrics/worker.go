package metrics

import "time"

// JobCompleted records a successful sweep run
func JobCompleted(jobType string, duration time.Duration) {
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a failed sweep run
func JobFailed(jobType string, duration time.Duration) {
	JobsTotal.WithLabelValues(jobType, "failed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobSkipped records a run that did not start because another holds the lock
func JobSkipped(jobType string) {
	JobsTotal.WithLabelValues(jobType, "skipped").Inc()
}
