package mojang

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"dropwatch/internal/services/dropwatch/domain"
)

// SelectorKind names a client selection strategy
type SelectorKind string

const (
	// SelectUniform picks clients uniformly at random
	SelectUniform SelectorKind = "uniform"
	// SelectAdaptive favours clients with a good recent success rate
	SelectAdaptive SelectorKind = "adaptive"
)

const (
	adaptiveWindow  = 60 * time.Second
	adaptiveRefresh = time.Second
)

// NewSelector returns the selector for kind over p; unknown kinds fall back to uniform
func NewSelector(kind SelectorKind, p *Pool) domain.Selector {
	if kind == SelectAdaptive {
		return NewAdaptiveSelector(p, time.Now)
	}
	return &UniformSelector{pool: p}
}

// UniformSelector picks a client uniformly at random and ignores outcomes
type UniformSelector struct{ pool *Pool }

// Select returns a random client
func (s *UniformSelector) Select() domain.Client { return s.pool.At(rand.IntN(s.pool.Len())) }

// Record is a no-op
func (s *UniformSelector) Record(domain.Client, domain.Outcome) {}

type call struct {
	at time.Time
	ok bool
}

type clientStats struct {
	mu    sync.Mutex
	calls []call
}

func (cs *clientStats) record(at time.Time, ok bool) {
	cs.mu.Lock()
	cs.calls = append(cs.calls, call{at: at, ok: ok})
	cs.mu.Unlock()
}

// score trims calls older than the window and returns 100*rate^3/sqrt(total),
// or 100 for an idle client so new and quiet clients keep getting picked
func (cs *clientStats) score(now time.Time) float64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cut := 0
	for cut < len(cs.calls) && now.Sub(cs.calls[cut].at) > adaptiveWindow {
		cut++
	}
	if cut > 0 {
		cs.calls = append(cs.calls[:0], cs.calls[cut:]...)
	}
	total := len(cs.calls)
	if total == 0 {
		return 100
	}
	ok := 0
	for _, c := range cs.calls {
		if c.ok {
			ok++
		}
	}
	rate := float64(ok) / float64(total)
	return 100 * rate * rate * rate / math.Sqrt(float64(total))
}

// AdaptiveSelector weights clients by their success rate over the last minute.
// Weights are recomputed at most once per adaptiveRefresh and shared by every
// Select in between
type AdaptiveSelector struct {
	pool  *Pool
	stats map[string]*clientStats
	now   func() time.Time

	mu   sync.Mutex
	snap atomic.Pointer[weights]
}

// weights is a cumulative score table over the pool
type weights struct {
	at  time.Time
	cum []float64
}

// NewAdaptiveSelector builds per-client stats for every client in p
func NewAdaptiveSelector(p *Pool, now func() time.Time) *AdaptiveSelector {
	st := make(map[string]*clientStats, p.Len())
	for i := range p.Len() {
		st[p.At(i).ID()] = &clientStats{}
	}
	return &AdaptiveSelector{pool: p, stats: st, now: now}
}

// Select draws a client with probability proportional to its score.
// When every score is zero it falls back to a uniform pick
func (s *AdaptiveSelector) Select() domain.Client {
	n := s.pool.Len()
	w := s.current(s.now())
	sum := w.cum[n-1]
	if sum <= 0 || math.IsNaN(sum) {
		return s.pool.At(rand.IntN(n))
	}
	r := rand.Float64() * sum
	i := sort.Search(n, func(i int) bool { return r < w.cum[i] })
	return s.pool.At(min(i, n-1))
}

// current returns the weight table, rebuilding it when older than adaptiveRefresh
func (s *AdaptiveSelector) current(now time.Time) *weights {
	if w := s.snap.Load(); w != nil && now.Sub(w.at) < adaptiveRefresh {
		return w
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w := s.snap.Load(); w != nil && now.Sub(w.at) < adaptiveRefresh {
		return w
	}
	n := s.pool.Len()
	w := &weights{at: now, cum: make([]float64, n)}
	sum := 0.0
	for i := range n {
		sum += s.stats[s.pool.At(i).ID()].score(now)
		w.cum[i] = sum
	}
	s.snap.Store(w)
	return w
}

// Record adds one call to c's window; only OutcomeResolved counts as success
func (s *AdaptiveSelector) Record(c domain.Client, o domain.Outcome) {
	if c == nil {
		return
	}
	if cs, ok := s.stats[c.ID()]; ok {
		cs.record(s.now(), o == domain.OutcomeResolved)
	}
}

// Score exposes the current weight of the client with id
func (s *AdaptiveSelector) Score(id string) float64 {
	if cs, ok := s.stats[id]; ok {
		return cs.score(s.now())
	}
	return 0
}
