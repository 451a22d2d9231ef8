package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestReporterTickFormatsAndResets(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Counters{}
	n := &fakeNotifier{}
	r := NewReporter(c, n, time.Minute, 120*time.Hour, func() time.Time { return now })

	c.Success.Store(120)
	c.RateLimited.Store(50)
	c.Forbidden.Store(30)
	c.Errors.Store(5)
	now = now.Add(time.Minute)
	rep := r.Tick(context.Background())

	want := "**Checkpoint** `60s`\n" +
		"• 200  : `120` (60%)\n" +
		"• 429  : `50` (25%)\n" +
		"• 403  : `30` (15%)\n" +
		"• Err  : `5` (2.5%)\n" +
		"• RPS  : `2.0`\n" +
		"• UPT  : `0D 00H 01m 00s`"
	if got := rep.Message(); got != want {
		t.Fatalf("Message =\n%s\nwant\n%s", got, want)
	}
	if len(n.texts) != 1 || n.texts[0] != want {
		t.Fatalf("sent = %q", n.texts)
	}
	if c.Load() != (Snapshot{}) {
		t.Fatalf("counters not reset: %+v", c.Load())
	}
}

func TestReporterZeroTotal(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Counters{}
	c.Errors.Store(7)
	r := NewReporter(c, &fakeNotifier{}, time.Minute, 0, func() time.Time { return now })
	now = now.Add(30 * time.Second)
	rep := r.Tick(context.Background())
	if rep.Share200 != 0 || rep.ShareErr != 0 || rep.RPS != 0 {
		t.Fatalf("zero total should give zero shares: %+v", rep)
	}
}

func TestReporterRebasesUptime(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	r := NewReporter(&Counters{}, &fakeNotifier{}, time.Minute, 120*time.Hour, func() time.Time { return now })

	now = start.Add(119 * time.Hour)
	if rep := r.Tick(context.Background()); rep.Uptime.Days != 4 || rep.Uptime.Hours != 23 {
		t.Fatalf("uptime = %+v", rep.Uptime)
	}
	now = start.Add(120*time.Hour + time.Minute)
	if rep := r.Tick(context.Background()); rep.Uptime.Days != 5 {
		t.Fatalf("uptime = %+v", rep.Uptime)
	}
	now = now.Add(time.Minute)
	if rep := r.Tick(context.Background()); rep.Uptime.Days != 0 || rep.Uptime.Minutes != 1 {
		t.Fatalf("uptime after rebase = %+v", rep.Uptime)
	}
}

func TestReporterSendFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	r := NewReporter(&Counters{}, &fakeNotifier{err: errors.New("webhook down")}, time.Minute, 0, nil)
	_ = r.Tick(context.Background())
}

func TestReporterRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{}
	r := NewReporter(&Counters{}, n, 5*time.Millisecond, 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run err = %v", err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.texts) == 0 {
		t.Fatalf("no checkpoints sent")
	}
}
