package queue

import "time"

// DefaultQueueName is the Redis list key used when none is configured.
const DefaultQueueName = "dto:queue"

// Config holds the queue and lock configuration.
type Config struct {
	QueueName             string `env:"QUEUE_NAME" envDefault:"dto:queue"`
	WorkerPollTimeoutSecs int    `env:"WORKER_POLL_TIMEOUT_SECONDS" envDefault:"2"`
	TaskLockTTLSecs       int    `env:"TASK_LOCK_TTL_SECONDS" envDefault:"30"`
}

// PollTimeout is the blocking dequeue timeout.
func (c Config) PollTimeout() time.Duration {
	return time.Duration(c.WorkerPollTimeoutSecs) * time.Second
}

// LockTTL is the per-task exclusion lock lifetime.
func (c Config) LockTTL() time.Duration {
	return time.Duration(c.TaskLockTTLSecs) * time.Second
}
