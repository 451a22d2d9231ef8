// Package module wires the dropwatch service to its adapters and exposes its ports
package module

import (
	"time"

	"dropwatch/internal/adapters/discord"
	"dropwatch/internal/adapters/droplog"
	"dropwatch/internal/adapters/mojang"
	"dropwatch/internal/adapters/seed"
	"dropwatch/internal/modkit"
	phttp "dropwatch/internal/platform/net/http"
	"dropwatch/internal/platform/validate"

	dwhttp "dropwatch/internal/services/dropwatch/http"
	"dropwatch/internal/services/dropwatch/service"
)

// Module defines the dropwatch module
type Module struct {
	deps  modkit.Deps
	opts  Options
	built modkit.Built
	svc   *service.Svc
	ports Ports
}

// New constructs the dropwatch module. A proxy list with no usable entry
// yields mojang.ErrNoClients. mopts shape how the status routes are mounted
func New(deps modkit.Deps, overrides Options, mopts ...modkit.Option) (*Module, error) {
	// Load defaults from config then apply overrides from CLI (if provided)
	opts := FromConfig(deps.Cfg).merge(overrides)
	if err := validate.Struct(opts); err != nil {
		return nil, err
	}
	zone, err := time.LoadLocation(opts.Zone)
	if err != nil {
		return nil, err
	}

	proxies, err := seed.Proxies(opts.ProxiesFile)
	if err != nil {
		return nil, err
	}
	pool, err := mojang.NewPool(proxies, mojang.PoolOptions{
		Cap:     opts.MaxClients,
		Timeout: opts.ClientTimeout,
	})
	if err != nil {
		return nil, err
	}
	handles, err := seed.Handles(opts.HandlesFile)
	if err != nil {
		return nil, err
	}

	svc, err := service.New(deps, service.Config{
		Workers:        opts.Workers,
		Permits:        opts.Permits,
		BatchSize:      opts.BatchSize,
		MaxAttempts:    opts.MaxAttempts,
		AttemptTimeout: opts.AttemptTimeout,
		Pacing:         opts.Pacing,
		StartJitter:    opts.StartJitter,
		DropOffset:     opts.DropOffset,
		ReportEvery:    opts.ReportEvery,
		UptimeRebase:   opts.UptimeRebase,
		Zone:           zone,
		DispatchQueue:  opts.DispatchQueue,
		Shards:         opts.Shards,
	}, service.Externals{
		Handles:  handles,
		Clients:  pool.Len(),
		Selector: mojang.NewSelector(mojang.SelectorKind(opts.Selector), pool),
		Prober:   mojang.NewProbe(mojang.ProbeOptions{}),
		Notifier: discord.New(discord.Options{
			StatusURL: opts.WebhookStatus,
			DropsURL:  opts.WebhookDrops,
			RPS:       opts.NotifyRPS,
			Burst:     opts.NotifyBurst,
			Zone:      zone,
		}),
		DropLog: droplog.Open(opts.DropLog, zone),
	})
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps, opts: opts, built: modkit.Build("dropwatch", mopts...), svc: svc}
	m.ports = Ports{
		Worker: svc,
		Reader: svc,
	}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the module ports (Worker, Reader)
func (m *Module) Ports() any { return m.ports }

// Options returns the effective options after env and overrides
func (m *Module) Options() Options { return m.opts }

// MountRoutes mounts the read-only status routes under the module prefix
func (m *Module) MountRoutes(r phttp.Router) {
	m.built.Mount(r, func(sub phttp.Router) { dwhttp.Register(sub, m.svc) })
}
