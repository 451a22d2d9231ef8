package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"dropwatch/internal/adapters/mojang"
	"dropwatch/internal/core/version"
	"dropwatch/internal/modkit"
	"dropwatch/internal/modkit/module"
	"dropwatch/internal/platform/config"
	"dropwatch/internal/platform/logger"
	phttp "dropwatch/internal/platform/net/http"
	"dropwatch/internal/platform/net/middleware"
	"dropwatch/internal/platform/store"

	dwmod "dropwatch/internal/services/dropwatch/module"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	if err := run(); err != nil {
		logger.Get().Error().Err(err).Msg("dropwatch stopped with error")
		os.Exit(1)
	}
}

func run() error {
	var (
		fProxies  = flag.String("proxies", "", "proxy list file (one entry per line)")
		fHandles  = flag.String("handles", "", "handle seed file (one handle per line)")
		fWorkers  = flag.Int("workers", 0, "scheduler workers (0 = env/default)")
		fPermits  = flag.Int64("permits", 0, "max in-flight fetches (0 = env/default)")
		fBatch    = flag.Int("batch", 0, "handles per request, at most 10 (0 = env/default)")
		fSelector = flag.String("selector", "", "client selection: uniform | adaptive")
		fAPI      = flag.Bool("api", false, "serve the status API and /metrics")
	)
	flag.Parse()

	logger.Init(logger.FromEnv())
	l := logger.Get()

	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	// Export flags as env so FromConfig sees one source of truth
	mustSetEnv("DROPWATCH_PROXIES_FILE", *fProxies)
	mustSetEnv("DROPWATCH_HANDLES_FILE", *fHandles)
	mustSetEnv("DROPWATCH_SELECTOR", *fSelector)
	if *fAPI {
		mustSetEnv("DROPWATCH_API_ENABLED", "true")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres mirror is optional
	var st *store.Store
	if url := dbCfg.MayString("DBURL_DROPWATCH", ""); url != "" {
		var err error
		st, err = store.Open(ctx, store.Config{
			AppName: "dropwatch",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         url,
				MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
				LogSQL:      dbCfg.MayBool("LOG_SQL", false),
			},
		}, store.WithLogger(*l))
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := modkit.Deps{Log: *l, Cfg: root, Reg: reg}
	if st != nil {
		deps.PG = st.PG
	}

	dw, err := dwmod.New(deps, dwmod.Options{
		Workers:   *fWorkers,
		Permits:   *fPermits,
		BatchSize: *fBatch,
	})
	if errors.Is(err, mojang.ErrNoClients) {
		l.Error().Err(err).Msg("no usable proxies, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	ports := module.MustPortsOf[dwmod.Ports](dw)
	opts := dw.Options()
	l.Info().
		Str("version", version.Info().Version).
		Int("workers", opts.Workers).
		Int64("permits", opts.Permits).
		Int("batch", opts.BatchSize).
		Str("selector", opts.Selector).
		Bool("api", opts.APIEnabled).
		Msg("dropwatch starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ports.Worker.Run(gctx) })

	if opts.APIEnabled {
		srv := phttp.NewServer(opts.APIPort, func(m *chi.Mux) { m.Use(middleware.Defaults()...) })
		r := srv.Router()
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		dw.MountRoutes(r)
		g.Go(func() error { return srv.Run(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	l.Info().Msg("dropwatch stopped")
	return nil
}
