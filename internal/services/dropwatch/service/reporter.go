package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
)

// Report is one interval's summary
type Report struct {
	Elapsed  time.Duration
	Counts   Snapshot
	RPS      float64
	Share200 float64
	Share429 float64
	Share403 float64
	ShareErr float64
	Uptime   ptime.Span
}

// Reporter periodically samples and resets the outcome counters, then
// publishes one human-readable summary per interval
type Reporter struct {
	counters *Counters
	notifier domain.Notifier
	every    time.Duration
	rebase   time.Duration
	log      logger.Logger
	now      ptime.Clock

	baseline time.Time
	last     time.Time
}

// NewReporter wires a Reporter. rebase <= 0 never resets the uptime baseline
func NewReporter(c *Counters, n domain.Notifier, every, rebase time.Duration, now ptime.Clock) *Reporter {
	if every <= 0 {
		every = time.Minute
	}
	if now == nil {
		now = ptime.System
	}
	start := now()
	return &Reporter{
		counters: c,
		notifier: n,
		every:    every,
		rebase:   rebase,
		log:      *logger.Named("reporter"),
		now:      now,
		baseline: start,
		last:     start,
	}
}

// Run ticks every interval until ctx ends
func (r *Reporter) Run(ctx context.Context) error {
	t := time.NewTicker(r.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Tick(ctx)
		}
	}
}

// Tick builds and publishes one report. Delivery failures are only logged
func (r *Reporter) Tick(ctx context.Context) Report {
	rep := r.sample()
	r.log.Info().
		Dur("elapsed", rep.Elapsed).
		Int64("success", rep.Counts.Success).
		Int64("rate_limited", rep.Counts.RateLimited).
		Int64("forbidden", rep.Counts.Forbidden).
		Int64("errors", rep.Counts.Errors).
		Float64("rps", rep.RPS).
		Int64("uptime_days", rep.Uptime.Days).
		Msg("checkpoint")
	if err := r.notifier.Send(ctx, rep.Message()); err != nil {
		r.log.Warn().Err(err).Msg("checkpoint not delivered")
	}
	return rep
}

func (r *Reporter) sample() Report {
	now := r.now()
	c := r.counters.Swap()
	elapsed := now.Sub(r.last)
	r.last = now

	rep := Report{Elapsed: elapsed, Counts: c}
	if secs := elapsed.Seconds(); secs > 0 {
		rep.RPS = float64(c.Success) / secs
	}
	if total := c.Success + c.RateLimited + c.Forbidden; total > 0 {
		pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }
		rep.Share200 = math.Round(pct(c.Success))
		rep.Share429 = math.Round(pct(c.RateLimited))
		rep.Share403 = math.Round(pct(c.Forbidden))
		rep.ShareErr = pct(c.Errors)
	}

	up := now.Sub(r.baseline)
	rep.Uptime = ptime.Breakdown(up)
	if r.rebase > 0 && up >= r.rebase {
		r.baseline = now
	}
	return rep
}

// Message renders the report for the status channel
func (rep Report) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Checkpoint** `%s`\n", strconv.FormatFloat(rep.Elapsed.Seconds(), 'f', 0, 64)+"s")
	fmt.Fprintf(&b, "• 200  : `%d` (%s%%)\n", rep.Counts.Success, num(rep.Share200))
	fmt.Fprintf(&b, "• 429  : `%d` (%s%%)\n", rep.Counts.RateLimited, num(rep.Share429))
	fmt.Fprintf(&b, "• 403  : `%d` (%s%%)\n", rep.Counts.Forbidden, num(rep.Share403))
	fmt.Fprintf(&b, "• Err  : `%d` (%s%%)\n", rep.Counts.Errors, num(rep.ShareErr))
	fmt.Fprintf(&b, "• RPS  : `%.1f`\n", rep.RPS)
	fmt.Fprintf(&b, "• UPT  : `%dD %02dH %02dm %02ds`", rep.Uptime.Days, rep.Uptime.Hours, rep.Uptime.Minutes, rep.Uptime.Seconds)
	return b.String()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
