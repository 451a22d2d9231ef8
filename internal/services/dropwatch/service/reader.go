package service

import (
	"context"
	"time"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/services/dropwatch/domain"
)

// Handle returns the record of handle
func (s *Svc) Handle(_ context.Context, handle string) (domain.HandleRecord, error) {
	r, ok := s.handles.Get(domain.NormalizeHandle(handle))
	if !ok {
		return domain.HandleRecord{}, perr.NotFoundf("handle %q is not watched", handle)
	}
	return r, nil
}

// Window returns the latest window of handle
func (s *Svc) Window(_ context.Context, handle string) (domain.Window, error) {
	w, ok := s.windows.Get(handle)
	if !ok {
		return domain.Window{}, perr.NotFoundf("no window for %q", handle)
	}
	return w, nil
}

// Windows lists every window ordered by begin
func (s *Svc) Windows(context.Context) ([]domain.Window, error) { return s.windows.List(), nil }

// Stats reports registry sizes and admission load
func (s *Svc) Stats(context.Context) domain.Stats {
	return domain.Stats{
		Handles:  s.handles.Len(),
		Windows:  s.windows.Len(),
		Clients:  s.clients,
		InFlight: s.admission.InFlight(),
	}
}

// Location is the zone used to render instants
func (s *Svc) Location() *time.Location { return s.config.Zone }

var _ Service = (*Svc)(nil)
