// Package modkit provides module wiring and core deps
package modkit

import (
	"dropwatch/internal/modkit/repokit"
	"dropwatch/internal/platform/config"
	"dropwatch/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// PG is nil when the Postgres mirror is disabled
	PG repokit.TxRunner

	// Reg receives module collectors; nil means metrics are not registered
	Reg prometheus.Registerer
}

// Registerer returns Reg or a throwaway registry so callers never nil check
func (d Deps) Registerer() prometheus.Registerer {
	if d.Reg != nil {
		return d.Reg
	}
	return prometheus.NewRegistry()
}
