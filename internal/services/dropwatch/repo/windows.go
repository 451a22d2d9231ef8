package repo

import (
	"cmp"
	"slices"

	"dropwatch/internal/services/dropwatch/domain"
)

// Windows keeps the latest predicted window per handle
type Windows struct {
	m *Sharded[domain.Window]
}

// NewWindows returns an empty registry with the given shard count
func NewWindows(shards int) *Windows {
	return &Windows{m: NewSharded[domain.Window](shards)}
}

// Put stores w, replacing any earlier window of the same handle
func (ws *Windows) Put(w domain.Window) { ws.m.Put(domain.NormalizeHandle(w.Handle), w) }

// Get returns the window of handle
func (ws *Windows) Get(handle string) (domain.Window, bool) {
	return ws.m.Get(domain.NormalizeHandle(handle))
}

// List returns every window ordered by Begin then handle
func (ws *Windows) List() []domain.Window {
	out := make([]domain.Window, 0, ws.m.Len())
	ws.m.Range(func(_ string, w domain.Window) bool {
		out = append(out, w)
		return true
	})
	slices.SortFunc(out, func(a, b domain.Window) int {
		if c := a.Begin.Compare(b.Begin); c != 0 {
			return c
		}
		return cmp.Compare(a.Handle, b.Handle)
	})
	return out
}

// Len is the number of windows
func (ws *Windows) Len() int { return ws.m.Len() }

var _ domain.WindowRegistry = (*Windows)(nil)
