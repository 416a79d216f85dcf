package scheduler

import "time"

// Config holds the scheduler configuration.
type Config struct {
	IntervalSeconds float64 `env:"SCHEDULER_INTERVAL_SECONDS" envDefault:"1"`
}

// Interval is the scan cadence.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds * float64(time.Second))
}
