package service

import "sync/atomic"

// Counters are the per-interval outcome tallies sampled by the reporter.
// Each is independent; no ordering holds between them
type Counters struct {
	Success     atomic.Int64
	RateLimited atomic.Int64
	Forbidden   atomic.Int64
	Errors      atomic.Int64
}

// Snapshot is one interval's worth of counts
type Snapshot struct {
	Success     int64
	RateLimited int64
	Forbidden   int64
	Errors      int64
}

// Swap reads and zeroes every counter
func (c *Counters) Swap() Snapshot {
	return Snapshot{
		Success:     c.Success.Swap(0),
		RateLimited: c.RateLimited.Swap(0),
		Forbidden:   c.Forbidden.Swap(0),
		Errors:      c.Errors.Swap(0),
	}
}

// Load reads every counter without resetting
func (c *Counters) Load() Snapshot {
	return Snapshot{
		Success:     c.Success.Load(),
		RateLimited: c.RateLimited.Load(),
		Forbidden:   c.Forbidden.Load(),
		Errors:      c.Errors.Load(),
	}
}
