package task

import "time"

// Config holds the task lifecycle configuration.
type Config struct {
	DefaultMaxAttempts int     `env:"DEFAULT_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseSeconds   float64 `env:"RETRY_BASE_SECONDS" envDefault:"1"`
	RetryMaxSeconds    float64 `env:"RETRY_MAX_SECONDS" envDefault:"60"`
	RetryJitterSeconds float64 `env:"RETRY_JITTER_SECONDS" envDefault:"0.25"`
}

// RetryPolicy builds the backoff policy from the configured values.
func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		Base:   secondsToDuration(c.RetryBaseSeconds),
		Cap:    secondsToDuration(c.RetryMaxSeconds),
		Jitter: secondsToDuration(c.RetryJitterSeconds),
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
