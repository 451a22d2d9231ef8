// Package service runs the dropwatch engine: scheduling, probing, transition
// detection, window prediction and reporting
package service

import (
	"context"
	"time"

	"dropwatch/internal/modkit"
	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
	"dropwatch/internal/services/dropwatch/repo"
)

// Service defines the dropwatch service contract
type Service interface {
	domain.WorkerPort
	domain.ReaderPort
}

// Config carries the engine knobs
type Config struct {
	Workers        int
	Permits        int64
	BatchSize      int
	MaxAttempts    int
	AttemptTimeout time.Duration
	Pacing         time.Duration
	StartJitter    time.Duration
	DropOffset     time.Duration
	ReportEvery    time.Duration
	UptimeRebase   time.Duration
	Zone           *time.Location
	DispatchQueue  int
	Shards         int
}

// Externals are the collaborators built outside the service
type Externals struct {
	Handles  []string
	Clients  int
	Selector domain.Selector
	Prober   domain.Prober
	Notifier domain.Notifier
	DropLog  domain.DropLog
}

// Svc implements the dropwatch service
type Svc struct {
	deps   modkit.Deps
	config Config
	log    logger.Logger

	names    []string
	clients  int
	selector domain.Selector
	prober   domain.Prober

	handles   *repo.Handles
	windows   *repo.Windows
	admission *Admission
	detector  *Detector
	predictor *Predictor
	dispatch  *Dispatcher
	mirror    *pgMirror
	counters  *Counters
	metrics   *Metrics
	reporter  *Reporter

	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs the service. The Postgres mirror is enabled when deps.PG is set
func New(deps modkit.Deps, cfg Config, ext Externals) (*Svc, error) {
	if ext.Selector == nil || ext.Prober == nil || ext.Notifier == nil || ext.DropLog == nil {
		return nil, perr.InvalidArgf("dropwatch service requires selector, prober, notifier and drop log")
	}
	cfg = withDefaults(cfg)

	m, err := NewMetrics(deps.Registerer())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "register metrics")
	}

	s := &Svc{
		deps:     deps,
		config:   cfg,
		log:      *logger.Named("dropwatch"),
		clients:  ext.Clients,
		selector: ext.Selector,
		prober:   ext.Prober,
		handles:  repo.NewHandles(cfg.Shards),
		windows:  repo.NewWindows(cfg.Shards),
		counters: &Counters{},
		metrics:  m,
		sleep:    sleepCtx,
	}
	s.handles.Seed(ext.Handles)
	s.names = make([]string, 0, len(ext.Handles))
	for _, h := range ext.Handles {
		if k := domain.NormalizeHandle(h); k != "" {
			s.names = append(s.names, k)
		}
	}

	var store domain.WindowStore
	if deps.PG != nil {
		s.mirror = newPGMirror(deps.PG)
		store = s.mirror
	}
	s.admission = NewAdmission(cfg.Permits, m)
	s.detector = NewDetector(s.handles)
	s.dispatch = NewDispatcher(cfg.DispatchQueue, ext.Notifier, ext.DropLog, store, m)
	s.predictor = NewPredictor(cfg.DropOffset, cfg.Zone, s.windows, s.dispatch, m)
	s.reporter = NewReporter(s.counters, ext.Notifier, cfg.ReportEvery, cfg.UptimeRebase, ptime.System)
	return s, nil
}

func withDefaults(c Config) Config {
	if c.Workers <= 0 {
		c.Workers = 7500
	}
	if c.Permits <= 0 {
		c.Permits = 150000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 30
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 5 * time.Second
	}
	if c.Pacing < 0 {
		c.Pacing = 0
	}
	if c.DropOffset <= 0 {
		c.DropOffset = domain.DefaultDropOffset
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = time.Minute
	}
	if c.Zone == nil {
		c.Zone = time.UTC
	}
	if c.Shards <= 0 {
		c.Shards = repo.DefaultShards
	}
	return c
}
