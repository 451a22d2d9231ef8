package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"dropwatch/internal/services/dropwatch/domain"
)

const namespace = "dropwatch"

// Metrics are cumulative Prometheus mirrors of engine activity.
// A nil *Metrics records nothing
type Metrics struct {
	attempts   *prometheus.CounterVec // by outcome
	batches    *prometheus.CounterVec // by result: merged, exhausted
	losses     prometheus.Counter
	inFlight   prometheus.Gauge
	dispatch   *prometheus.CounterVec // by path: queued, overflow
	sinkErrors *prometheus.CounterVec // by sink: notify, droplog, mirror
}

// NewMetrics builds and registers the engine collectors on reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Fetch attempts by classified outcome",
		}, []string{"outcome"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches finished, merged or exhausted",
		}, []string{"result"}),
		losses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "losses_total",
			Help:      "Identity loss transitions detected",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "admission_in_flight",
			Help:      "Fetches currently holding an admission permit",
		}),
		dispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Windows handed to side-effect dispatch by path",
		}, []string{"path"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Side-effect failures by sink",
		}, []string{"sink"}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.batches, m.losses, m.inFlight, m.dispatch, m.sinkErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) attempt(o domain.Outcome) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(o.String()).Inc()
}

func (m *Metrics) batch(merged bool) {
	if m == nil {
		return
	}
	if merged {
		m.batches.WithLabelValues("merged").Inc()
		return
	}
	m.batches.WithLabelValues("exhausted").Inc()
}

func (m *Metrics) loss() {
	if m == nil {
		return
	}
	m.losses.Inc()
}

func (m *Metrics) admitted(delta float64) {
	if m == nil {
		return
	}
	m.inFlight.Add(delta)
}

func (m *Metrics) dispatched(path string) {
	if m == nil {
		return
	}
	m.dispatch.WithLabelValues(path).Inc()
}

func (m *Metrics) sinkFailed(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
}
