package repo

import "dropwatch/internal/services/dropwatch/domain"

// Handles is the per-handle identity registry
type Handles struct {
	m *Sharded[domain.HandleRecord]
}

// NewHandles returns an empty registry with the given shard count
func NewHandles(shards int) *Handles {
	return &Handles{m: NewSharded[domain.HandleRecord](shards)}
}

// Seed inserts an unobserved record for every handle not yet present
func (h *Handles) Seed(handles []string) int {
	n := 0
	for _, name := range handles {
		if h.m.PutIfAbsent(domain.NormalizeHandle(name), domain.HandleRecord{}) {
			n++
		}
	}
	return n
}

// Update runs fn atomically for key
func (h *Handles) Update(key string, fn func(prev domain.HandleRecord, ok bool) domain.HandleRecord) {
	h.m.Update(key, fn)
}

// Get returns the record for key
func (h *Handles) Get(key string) (domain.HandleRecord, bool) { return h.m.Get(key) }

// Len is the number of records
func (h *Handles) Len() int { return h.m.Len() }

// ShardOf exposes the shard index of key
func (h *Handles) ShardOf(key string) int { return h.m.ShardOf(key) }

var _ domain.HandleRegistry = (*Handles)(nil)
