package service

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	perr "dropwatch/internal/platform/errors"
)

// Admission bounds the number of fetches in flight across all workers
type Admission struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
	peak     atomic.Int64
	metrics  *Metrics
}

// NewAdmission returns a controller with n permits
func NewAdmission(n int64, m *Metrics) *Admission {
	if n <= 0 {
		n = 1
	}
	return &Admission{sem: semaphore.NewWeighted(n), capacity: n, metrics: m}
}

// Acquire blocks until a permit frees or ctx ends. The returned release is
// safe to call more than once; only the first call frees the permit
func (a *Admission) Acquire(ctx context.Context) (func(), error) {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return func() {}, perr.Wrap(err, perr.ErrorCodeUnavailable, "admission")
	}
	n := a.inFlight.Add(1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	a.metrics.admitted(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			a.inFlight.Add(-1)
			a.metrics.admitted(-1)
			a.sem.Release(1)
		})
	}, nil
}

// InFlight is the number of permits currently held
func (a *Admission) InFlight() int64 { return a.inFlight.Load() }

// Peak is the highest InFlight observed
func (a *Admission) Peak() int64 { return a.peak.Load() }

// Cap is the permit count
func (a *Admission) Cap() int64 { return a.capacity }
