package service

import (
	"time"

	"github.com/google/uuid"

	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
)

// Enqueuer accepts windows for asynchronous side effects without blocking
type Enqueuer interface {
	Enqueue(w domain.Window)
}

// Predictor turns losses into windows, records them and schedules side effects
type Predictor struct {
	offset  time.Duration
	zone    *time.Location
	windows domain.WindowRegistry
	out     Enqueuer
	metrics *Metrics
	log     logger.Logger
	now     ptime.Clock
	newID   func() string
}

// NewPredictor wires a Predictor
func NewPredictor(offset time.Duration, zone *time.Location, windows domain.WindowRegistry, out Enqueuer, m *Metrics) *Predictor {
	if offset <= 0 {
		offset = domain.DefaultDropOffset
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Predictor{
		offset:  offset,
		zone:    zone,
		windows: windows,
		out:     out,
		metrics: m,
		log:     *logger.Named("predictor"),
		now:     ptime.System,
		newID:   uuid.NewString,
	}
}

// Handle records the window for l (latest wins) and enqueues its side effects
func (p *Predictor) Handle(l domain.Loss) domain.Window {
	w := domain.PredictWindow(l.Handle, l.Seen, l.Lost, p.offset)
	w.ID = p.newID()
	w.DetectedAt = p.now()

	// registry write stays on the detecting worker; side effects go through out
	p.windows.Put(w)
	p.metrics.loss()
	p.out.Enqueue(w)

	p.log.Info().
		Str("window_id", w.ID).
		Str("handle", w.Handle).
		Str("begin", domain.FormatInstant(w.Begin, p.zone)).
		Str("end", domain.FormatInstant(w.End, p.zone)).
		Dur("width", w.Duration()).
		Msg("identity lost, drop window predicted")
	return w
}
