package service

import (
	"context"
	"sync"

	"dropwatch/internal/platform/logger"
	"dropwatch/internal/services/dropwatch/domain"
)

const defaultQueue = 4096

// Dispatcher runs window side effects off the detection path. Enqueue never
// blocks: a full queue hands the window to its own goroutine instead
type Dispatcher struct {
	q        chan domain.Window
	notifier domain.Notifier
	droplog  domain.DropLog
	mirror   domain.WindowStore
	metrics  *Metrics
	log      logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	extra  sync.WaitGroup
}

// NewDispatcher wires a Dispatcher; mirror may be nil
func NewDispatcher(size int, n domain.Notifier, dl domain.DropLog, mirror domain.WindowStore, m *Metrics) *Dispatcher {
	if size <= 0 {
		size = defaultQueue
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		q:        make(chan domain.Window, size),
		notifier: n,
		droplog:  dl,
		mirror:   mirror,
		metrics:  m,
		log:      *logger.Named("dispatch"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue schedules w for delivery
func (d *Dispatcher) Enqueue(w domain.Window) {
	select {
	case d.q <- w:
		d.metrics.dispatched("queued")
	default:
		d.metrics.dispatched("overflow")
		d.extra.Go(func() { d.deliver(w) })
	}
}

// Run delivers queued windows until ctx ends, then writes whatever is still
// queued to the durable log only and waits for overflow deliveries
func (d *Dispatcher) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, d.cancel)
	defer stop()
	for {
		select {
		case w := <-d.q:
			if ctx.Err() != nil {
				d.append(w)
				continue
			}
			d.deliver(w)
		case <-ctx.Done():
			n := d.drain()
			d.extra.Wait()
			d.log.Info().Int("drained", n).Msg("dispatch stopped")
			return nil
		}
	}
}

func (d *Dispatcher) drain() int {
	n := 0
	for {
		select {
		case w := <-d.q:
			d.append(w)
			n++
		default:
			return n
		}
	}
}

// deliver writes the durable record first, then notifies, then mirrors.
// Every failure is logged and swallowed
func (d *Dispatcher) deliver(w domain.Window) {
	d.append(w)
	if err := d.notifier.NotifyWindow(d.ctx, w); err != nil {
		d.metrics.sinkFailed("notify")
		d.log.Warn().Err(err).Str("window_id", w.ID).Str("handle", w.Handle).Msg("window notification failed")
	}
	if d.mirror != nil {
		if err := d.mirror.UpsertWindow(d.ctx, w); err != nil {
			d.metrics.sinkFailed("mirror")
			d.log.Error().Err(err).Str("window_id", w.ID).Str("handle", w.Handle).Msg("window mirror failed")
		}
	}
}

func (d *Dispatcher) append(w domain.Window) {
	if err := d.droplog.Append(w); err != nil {
		d.metrics.sinkFailed("droplog")
		d.log.Error().Err(err).Str("window_id", w.ID).Str("handle", w.Handle).Msg("window log append failed")
	}
}

// Pending is the number of queued windows
func (d *Dispatcher) Pending() int { return len(d.q) }
