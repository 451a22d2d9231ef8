package service

import (
	"time"

	"dropwatch/internal/services/dropwatch/domain"
)

// Detector merges resolved observations into the handle registry and reports losses
type Detector struct {
	handles domain.HandleRegistry
}

// NewDetector returns a Detector over handles
func NewDetector(handles domain.HandleRegistry) *Detector { return &Detector{handles: handles} }

// Merge applies every observation at instant at. Each handle is updated inside
// its own critical section; the returned losses are computed there but handed
// back only after every section is released.
//
// A loss is a present identity followed by an absent one. It is skipped when
// the previous record has no last-seen instant. An observation older than the
// record's last-seen instant leaves the record untouched
func (d *Detector) Merge(obs []domain.Observation, at time.Time) []domain.Loss {
	var losses []domain.Loss
	for _, o := range obs {
		key := domain.NormalizeHandle(o.Handle)
		if key == "" {
			continue
		}
		var loss *domain.Loss
		d.handles.Update(key, func(prev domain.HandleRecord, ok bool) domain.HandleRecord {
			if ok && at.Before(prev.LastSeen) {
				return prev
			}
			if ok && prev.Bound() && o.Identity == "" && prev.Observed() {
				loss = &domain.Loss{Handle: key, Seen: prev.LastSeen, Lost: at}
			}
			return domain.HandleRecord{Identity: o.Identity, LastSeen: at}
		})
		if loss != nil {
			losses = append(losses, *loss)
		}
	}
	return losses
}
