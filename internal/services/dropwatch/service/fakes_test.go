package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"dropwatch/internal/modkit"
	"dropwatch/internal/services/dropwatch/domain"
)

type fakeClient string

func (f fakeClient) ID() string                               { return string(f) }
func (f fakeClient) Do(*http.Request) (*http.Response, error) { return nil, http.ErrServerClosed }

type fakeSelector struct {
	mu      sync.Mutex
	records []domain.Outcome
}

func (f *fakeSelector) Select() domain.Client { return fakeClient("c1") }

func (f *fakeSelector) Record(_ domain.Client, o domain.Outcome) {
	f.mu.Lock()
	f.records = append(f.records, o)
	f.mu.Unlock()
}

type proberFunc func(ctx context.Context, c domain.Client, batch []string) domain.ProbeResult

func (f proberFunc) Probe(ctx context.Context, c domain.Client, batch []string) domain.ProbeResult {
	return f(ctx, c, batch)
}

type fakeNotifier struct {
	mu      sync.Mutex
	texts   []string
	windows []domain.Window
	err     error
	block   chan struct{}
}

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

func (f *fakeNotifier) NotifyWindow(ctx context.Context, w domain.Window) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
	return f.err
}

func (f *fakeNotifier) notified() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

type fakeLog struct {
	mu      sync.Mutex
	windows []domain.Window
}

func (f *fakeLog) Append(w domain.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, w)
	return nil
}

func (f *fakeLog) appended() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.windows)
}

// resolved builds a ProbeResult where handles in present map to "id-"+handle
func resolved(at time.Time, batch []string, present map[string]bool) domain.ProbeResult {
	obs := make([]domain.Observation, len(batch))
	for i, h := range batch {
		obs[i] = domain.Observation{Handle: h}
		if present[h] {
			obs[i].Identity = "id-" + h
		}
	}
	return domain.ProbeResult{Outcome: domain.OutcomeResolved, Status: 200, At: at, Observations: obs}
}

type harness struct {
	svc      *Svc
	selector *fakeSelector
	notifier *fakeNotifier
	log      *fakeLog
}

func newHarness(t *testing.T, cfg Config, handles []string, p domain.Prober) *harness {
	t.Helper()
	h := &harness{selector: &fakeSelector{}, notifier: &fakeNotifier{}, log: &fakeLog{}}
	svc, err := New(modkit.Deps{Reg: prometheus.NewRegistry()}, cfg, Externals{
		Handles:  handles,
		Clients:  1,
		Selector: h.selector,
		Prober:   p,
		Notifier: h.notifier,
		DropLog:  h.log,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	svc.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	h.svc = svc
	return h
}
