package tasks

import "time"

// Config tunes the outbox queue. The queue carries notification fan-out
// and badge checks, so the workload is many small writes rather than a
// few slow jobs.
type Config struct {
	// Workers is the number of concurrent task workers.
	Workers int

	// MaxRetries is how many times a failed task is reattempted.
	MaxRetries int

	// RetryDelay is the backoff between attempts.
	RetryDelay time.Duration

	// TaskTimeout bounds a single task execution.
	TaskTimeout time.Duration

	// ReleaseAfter is when a claimed but unfinished task is handed back
	// to the queue.
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are pruned.
	CleanupInterval time.Duration

	// RetentionDuration is how long completed tasks stay queryable
	// before pruning.
	RetentionDuration time.Duration
}

// DefaultConfig returns the defaults used when no TASKS_* env overrides
// are set.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
