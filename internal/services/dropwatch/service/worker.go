package service

import (
	"context"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
)

// Run starts the dispatcher, the reporter and the workers, and blocks until
// ctx ends. Windows still queued at shutdown are written to the durable log
func (s *Svc) Run(ctx context.Context) error {
	s.prepareMirror(ctx)

	g, gctx := errgroup.WithContext(ctx)
	dctx, stopDispatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatch()

	g.Go(func() error { return s.dispatch.Run(dctx) })
	g.Go(func() error { return s.reporter.Run(gctx) })
	g.Go(func() error {
		defer stopDispatch()
		s.schedule(gctx)
		return nil
	})
	return g.Wait()
}

// prepareMirror pings the backend and creates the mirror table; on failure the mirror is switched off
func (s *Svc) prepareMirror(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	err := s.mirror.Ping(ctx)
	if err == nil {
		err = s.mirror.EnsureSchema(ctx)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("window mirror unavailable, continuing without it")
		s.dispatch.mirror = nil
	}
}

// schedule runs W workers until ctx ends and waits for them
func (s *Svc) schedule(ctx context.Context) {
	h := len(s.names)
	if h == 0 {
		s.log.Warn().Msg("no handles to watch, scheduler idle")
		return
	}
	w, b := s.config.Workers, s.config.BatchSize
	s.log.Info().
		Int("handles", h).
		Int("workers", w).
		Int("batch", b).
		Int("rounds", Rounds(h, w, b)).
		Int64("permits", s.admission.Cap()).
		Msg("scheduler starting")

	var wg sync.WaitGroup
	for i := range w {
		wg.Go(func() { s.runWorker(ctx, i) })
	}
	wg.Wait()
	s.log.Info().Int64("peak_in_flight", s.admission.Peak()).Msg("scheduler stopped")
}

// runWorker cycles worker i through its batches: batch, attempts, pacing, next round
func (s *Svc) runWorker(ctx context.Context, i int) {
	ctx = logger.WithWorker(ctx, i)
	h, w, b := len(s.names), s.config.Workers, s.config.BatchSize
	rounds := Rounds(h, w, b)

	if j := s.config.StartJitter; j > 0 {
		if s.sleep(ctx, rand.N(j)) != nil {
			return
		}
	}
	for k := 0; ctx.Err() == nil; k = (k + 1) % rounds {
		s.processBatch(ctx, BatchAt(s.names, Offset(i, k, w, b, h), b))
		if s.sleep(ctx, s.config.Pacing) != nil {
			return
		}
	}
}

// processBatch tries one batch up to MaxAttempts times and reports whether it merged
func (s *Svc) processBatch(ctx context.Context, batch []string) bool {
	for range s.config.MaxAttempts {
		if ctx.Err() != nil {
			return false
		}
		res := s.attempt(ctx, batch)
		s.metrics.attempt(res.Outcome)

		switch res.Outcome {
		case domain.OutcomeResolved:
			s.merge(res)
			s.counters.Success.Add(1)
			s.metrics.batch(true)
			return true
		case domain.OutcomeRateLimited:
			s.counters.RateLimited.Add(1)
		case domain.OutcomeForbidden:
			s.counters.Forbidden.Add(1)
		}
	}
	if ctx.Err() != nil {
		return false
	}
	s.counters.Errors.Add(1)
	s.metrics.batch(false)
	logger.C(ctx).Debug().Strs("batch", batch).Msg("batch exhausted")
	return false
}

// attempt runs one probe under a permit and the attempt timeout. The permit is
// released on every path, including a panic inside the probe
func (s *Svc) attempt(ctx context.Context, batch []string) (res domain.ProbeResult) {
	c := s.selector.Select()
	release, err := s.admission.Acquire(ctx)
	if err != nil {
		return domain.ProbeResult{Outcome: domain.OutcomeOther, Err: err}
	}
	defer release()
	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Interface("panic", r).Msg("probe panicked")
			res = domain.ProbeResult{Outcome: domain.OutcomeOther, Err: perr.PanicErrf("probe panic: %v", r)}
		}
		s.selector.Record(c, res.Outcome)
	}()

	actx, cancel := context.WithTimeout(ctx, s.config.AttemptTimeout)
	defer cancel()
	return s.prober.Probe(actx, c, batch)
}

// merge applies a resolved result and predicts windows for any losses
func (s *Svc) merge(res domain.ProbeResult) {
	at := res.At
	if at.IsZero() {
		at = ptime.System()
	}
	for _, l := range s.detector.Merge(res.Observations, at) {
		s.predictor.Handle(l)
	}
}
