package service

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"dropwatch/internal/services/dropwatch/domain"
)

// gathered returns the value of family name with label value lv ("" for unlabeled)
func gathered(t *testing.T, reg *prometheus.Registry, name, lv string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := m.GetLabel()
			if lv != "" && (len(labels) == 0 || labels[0].GetValue() != lv) {
				continue
			}
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.attempt(domain.OutcomeRateLimited)
	m.attempt(domain.OutcomeRateLimited)
	m.attempt(domain.OutcomeResolved)
	m.batch(true)
	m.batch(false)
	m.loss()
	m.admitted(1)
	m.admitted(1)
	m.admitted(-1)
	m.dispatched("overflow")
	m.sinkFailed("mirror")

	checks := []struct {
		name, label string
		want        float64
	}{
		{"dropwatch_attempts_total", "rate_limited", 2},
		{"dropwatch_attempts_total", "resolved", 1},
		{"dropwatch_batches_total", "merged", 1},
		{"dropwatch_batches_total", "exhausted", 1},
		{"dropwatch_losses_total", "", 1},
		{"dropwatch_admission_in_flight", "", 1},
		{"dropwatch_dispatch_total", "overflow", 1},
		{"dropwatch_sink_errors_total", "mirror", 1},
	}
	for _, c := range checks {
		if got := gathered(t, reg, c.name, c.label); got != c.want {
			t.Fatalf("%s{%s} = %v, want %v", c.name, c.label, got, c.want)
		}
	}
}

func TestMetrics_DuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first NewMetrics: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatalf("second registration on the same registry should fail")
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.attempt(domain.OutcomeOther)
	m.batch(true)
	m.loss()
	m.admitted(1)
	m.dispatched("queued")
	m.sinkFailed("notify")
}
