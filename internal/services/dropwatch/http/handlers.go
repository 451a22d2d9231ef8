// Package http provides the read-only status routes for dropwatch
package http

import (
	stdhttp "net/http"

	"dropwatch/internal/core/version"
	phttp "dropwatch/internal/platform/net/http"
	"dropwatch/internal/services/dropwatch/domain"
)

// Health is the body of GET /healthz
type Health struct {
	Status string            `json:"status"`
	Build  version.BuildInfo `json:"build"`
	domain.Stats
}

// HandleView is the status rendering of one handle record
type HandleView struct {
	Handle   string `json:"handle"`
	Identity string `json:"identity,omitempty"`
	Bound    bool   `json:"bound"`
	LastSeen string `json:"last_seen,omitempty"`
}

// Register mounts the status endpoints on r
func Register(r phttp.Router, rd domain.ReaderPort) {
	h := &handlers{rd: rd}

	phttp.GetJSON(r, "/healthz", h.health)
	phttp.GetJSON(r, "/v1/windows", h.windows)
	phttp.GetJSON(r, "/v1/windows/{handle}", h.window)
	phttp.GetJSON(r, "/v1/handles/{handle}", h.handle)
}

type handlers struct{ rd domain.ReaderPort }

func (h *handlers) health(r *stdhttp.Request) (any, error) {
	return Health{Status: "ok", Build: version.Info(), Stats: h.rd.Stats(r.Context())}, nil
}

func (h *handlers) windows(r *stdhttp.Request) (any, error) {
	ws, err := h.rd.Windows(r.Context())
	if err != nil {
		return nil, err
	}
	loc := h.rd.Location()
	out := make([]domain.View, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.View(loc))
	}
	return phttp.List(out), nil
}

func (h *handlers) window(r *stdhttp.Request) (any, error) {
	w, err := h.rd.Window(r.Context(), phttp.URLParam(r, "handle"))
	if err != nil {
		return nil, err
	}
	return w.View(h.rd.Location()), nil
}

func (h *handlers) handle(r *stdhttp.Request) (any, error) {
	name := domain.NormalizeHandle(phttp.URLParam(r, "handle"))
	rec, err := h.rd.Handle(r.Context(), name)
	if err != nil {
		return nil, err
	}
	v := HandleView{Handle: name, Identity: rec.Identity, Bound: rec.Bound()}
	if rec.Observed() {
		v.LastSeen = domain.FormatInstant(rec.LastSeen, h.rd.Location())
	}
	return v, nil
}
