package modkit

import (
	"net/http"
	"strings"

	phttp "dropwatch/internal/platform/net/http"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
}

// Build applies Option funcs over defaults and returns a plain struct
func Build(defaultName string, opts ...Option) Built {
	c := buildCfg{name: defaultName}
	for _, o := range opts {
		o(&c)
	}
	p := strings.TrimRight(strings.TrimSpace(c.prefix), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return Built{
		Name:   c.name,
		Prefix: p,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
	}
}

// Mount applies the built prefix and middleware, then calls register on the result
func (b Built) Mount(r phttp.Router, register func(phttp.Router)) {
	attach := func(sub phttp.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		register(sub)
	}
	if b.Prefix == "" {
		r.Group(attach)
		return
	}
	r.Route(b.Prefix, attach)
}
