package runner

import (
	"time"
)

// Connection modes. Shared reuses one client for the whole run, fresh
// constructs a client per call, both runs the workload once per strategy.
const (
	ModeShared = "shared"
	ModeFresh  = "fresh"
	ModeBoth   = "both"
)

type Config struct {
	URL     string
	Pattern string

	TotalCalls  int
	Concurrency int

	// Duration > 0 switches to a time budget and overrides TotalCalls.
	Duration time.Duration

	// Delay pauses between batches. Count-based mode only, never before
	// the first batch or after the last.
	Delay time.Duration

	Mode    string
	Timeout time.Duration

	// OutPrefix enables JSON report export to <prefix>.json.
	OutPrefix string
}

// Normalize fills defaults the dispatcher relies on.
func (c *Config) Normalize() {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Mode == "" {
		c.Mode = ModeShared
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}
