package module

import (
	"time"

	"dropwatch/internal/adapters/mojang"
	"dropwatch/internal/platform/config"
	"dropwatch/internal/services/dropwatch/domain"
)

// Options controls the dropwatch engine. Values are read from DROPWATCH_* env
// and may be overridden by CLI flags
type Options struct {
	ProxiesFile string `env:"DROPWATCH_PROXIES_FILE" validate:"required"`
	HandlesFile string `env:"DROPWATCH_HANDLES_FILE" validate:"required"`

	Workers        int           `env:"DROPWATCH_WORKERS" validate:"min=1"`
	Permits        int64         `env:"DROPWATCH_PERMITS" validate:"min=1"`
	BatchSize      int           `env:"DROPWATCH_BATCH_SIZE" validate:"min=1,max=10"`
	MaxClients     int           `env:"DROPWATCH_MAX_CLIENTS" validate:"min=1"`
	ClientTimeout  time.Duration `env:"DROPWATCH_CLIENT_TIMEOUT" validate:"gt=0"`
	AttemptTimeout time.Duration `env:"DROPWATCH_ATTEMPT_TIMEOUT" validate:"gt=0"`
	MaxAttempts    int           `env:"DROPWATCH_MAX_ATTEMPTS" validate:"min=1"`
	Pacing         time.Duration `env:"DROPWATCH_PACING" validate:"min=0"`
	StartJitter    time.Duration `env:"DROPWATCH_START_JITTER" validate:"min=0"`

	DropOffset   time.Duration `env:"DROPWATCH_DROP_OFFSET" validate:"gt=0"`
	Zone         string        `env:"DROPWATCH_ZONE" validate:"iana_zone"`
	ReportEvery  time.Duration `env:"DROPWATCH_REPORT_EVERY" validate:"gt=0"`
	UptimeRebase time.Duration `env:"DROPWATCH_UPTIME_REBASE" validate:"min=0"`
	Shards       int           `env:"DROPWATCH_SHARDS" validate:"min=1"`

	Selector      string  `env:"DROPWATCH_SELECTOR" validate:"oneof=uniform adaptive"`
	DropLog       string  `env:"DROPWATCH_DROP_LOG" validate:"required"`
	WebhookStatus string  `env:"DROPWATCH_WEBHOOK_STATUS" validate:"omitempty,url"`
	WebhookDrops  string  `env:"DROPWATCH_WEBHOOK_DROPS" validate:"omitempty,url"`
	NotifyRPS     float64 `env:"DROPWATCH_NOTIFY_RPS" validate:"gt=0"`
	NotifyBurst   int     `env:"DROPWATCH_NOTIFY_BURST" validate:"min=1"`
	DispatchQueue int     `env:"DROPWATCH_DISPATCH_QUEUE" validate:"min=1"`

	APIEnabled bool   `env:"DROPWATCH_API_ENABLED"`
	APIPort    string `env:"DROPWATCH_API_PORT"`
}

// FromConfig reads options using the DROPWATCH_ prefix
func FromConfig(cfg config.Conf) Options {
	dw := cfg.Prefix("DROPWATCH_")
	return Options{
		ProxiesFile: dw.MayString("PROXIES_FILE", "proxies.txt"),
		HandlesFile: dw.MayString("HANDLES_FILE", "names/3c.txt"),

		Workers:        dw.MayInt("WORKERS", 7500),
		Permits:        int64(dw.MayInt("PERMITS", 150000)),
		BatchSize:      dw.MayInt("BATCH_SIZE", 10),
		MaxClients:     dw.MayInt("MAX_CLIENTS", 10000),
		ClientTimeout:  dw.MayDuration("CLIENT_TIMEOUT", 3*time.Second),
		AttemptTimeout: dw.MayDuration("ATTEMPT_TIMEOUT", 5*time.Second),
		MaxAttempts:    dw.MayInt("MAX_ATTEMPTS", 30),
		Pacing:         dw.MayDuration("PACING", 550*time.Millisecond),
		StartJitter:    dw.MayDuration("START_JITTER", 0),

		DropOffset:   dw.MayDuration("DROP_OFFSET", domain.DefaultDropOffset),
		Zone:         dw.MayString("ZONE", domain.DefaultZone),
		ReportEvery:  dw.MayDuration("REPORT_EVERY", time.Minute),
		UptimeRebase: dw.MayDuration("UPTIME_REBASE", 120*time.Hour),
		Shards:       dw.MayInt("SHARDS", 1024),

		Selector:      dw.MayEnum("SELECTOR", string(mojang.SelectUniform), string(mojang.SelectUniform), string(mojang.SelectAdaptive)),
		DropLog:       dw.MayString("DROP_LOG", "drop_windows.txt"),
		WebhookStatus: dw.MayString("WEBHOOK_STATUS", ""),
		WebhookDrops:  dw.MayString("WEBHOOK_DROPS", ""),
		NotifyRPS:     dw.MayFloat64("NOTIFY_RPS", 0.5),
		NotifyBurst:   dw.MayInt("NOTIFY_BURST", 5),
		DispatchQueue: dw.MayInt("DISPATCH_QUEUE", 4096),

		APIEnabled: dw.MayBool("API_ENABLED", false),
		APIPort:    dw.MayString("API_PORT", ":4000"),
	}
}

// merge applies non-zero overrides on top of o
func (o Options) merge(ov Options) Options {
	if ov.ProxiesFile != "" {
		o.ProxiesFile = ov.ProxiesFile
	}
	if ov.HandlesFile != "" {
		o.HandlesFile = ov.HandlesFile
	}
	if ov.Workers != 0 {
		o.Workers = ov.Workers
	}
	if ov.Permits != 0 {
		o.Permits = ov.Permits
	}
	if ov.BatchSize != 0 {
		o.BatchSize = ov.BatchSize
	}
	if ov.MaxClients != 0 {
		o.MaxClients = ov.MaxClients
	}
	if ov.ClientTimeout != 0 {
		o.ClientTimeout = ov.ClientTimeout
	}
	if ov.AttemptTimeout != 0 {
		o.AttemptTimeout = ov.AttemptTimeout
	}
	if ov.MaxAttempts != 0 {
		o.MaxAttempts = ov.MaxAttempts
	}
	if ov.Pacing != 0 {
		o.Pacing = ov.Pacing
	}
	if ov.StartJitter != 0 {
		o.StartJitter = ov.StartJitter
	}
	if ov.DropOffset != 0 {
		o.DropOffset = ov.DropOffset
	}
	if ov.Zone != "" {
		o.Zone = ov.Zone
	}
	if ov.ReportEvery != 0 {
		o.ReportEvery = ov.ReportEvery
	}
	if ov.UptimeRebase != 0 {
		o.UptimeRebase = ov.UptimeRebase
	}
	if ov.Shards != 0 {
		o.Shards = ov.Shards
	}
	if ov.Selector != "" {
		o.Selector = ov.Selector
	}
	if ov.DropLog != "" {
		o.DropLog = ov.DropLog
	}
	if ov.WebhookStatus != "" {
		o.WebhookStatus = ov.WebhookStatus
	}
	if ov.WebhookDrops != "" {
		o.WebhookDrops = ov.WebhookDrops
	}
	if ov.NotifyRPS != 0 {
		o.NotifyRPS = ov.NotifyRPS
	}
	if ov.NotifyBurst != 0 {
		o.NotifyBurst = ov.NotifyBurst
	}
	if ov.DispatchQueue != 0 {
		o.DispatchQueue = ov.DispatchQueue
	}
	if ov.APIEnabled {
		o.APIEnabled = true
	}
	if ov.APIPort != "" {
		o.APIPort = ov.APIPort
	}
	return o
}
