package repo

import (
	"testing"
	"time"

	"dropwatch/internal/services/dropwatch/domain"
)

func TestHandlesSeed(t *testing.T) {
	t.Parallel()

	h := NewHandles(16)
	if n := h.Seed([]string{"Abc", "abc ", "xyz"}); n != 2 {
		t.Fatalf("Seed inserted %d want 2", n)
	}
	r, ok := h.Get("abc")
	if !ok || r.Bound() || r.Observed() {
		t.Fatalf("seeded record = %+v ok=%v", r, ok)
	}

	h.Update("abc", func(domain.HandleRecord, bool) domain.HandleRecord {
		return domain.HandleRecord{Identity: "id", LastSeen: time.Unix(1, 0)}
	})
	if n := h.Seed([]string{"abc"}); n != 0 {
		t.Fatalf("re-seed overwrote an existing record")
	}
	if r, _ := h.Get("abc"); r.Identity != "id" {
		t.Fatalf("record lost after re-seed: %+v", r)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
}

func TestWindowsLatestWinsAndSorted(t *testing.T) {
	t.Parallel()

	ws := NewWindows(8)
	base := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
	ws.Put(domain.Window{Handle: "b", Begin: base.Add(time.Hour), End: base.Add(2 * time.Hour)})
	ws.Put(domain.Window{Handle: "a", Begin: base, End: base.Add(time.Hour)})
	ws.Put(domain.Window{Handle: "c", Begin: base, End: base})
	ws.Put(domain.Window{Handle: "B", Begin: base.Add(-time.Hour), End: base})

	if ws.Len() != 3 {
		t.Fatalf("Len = %d want 3", ws.Len())
	}
	w, ok := ws.Get("b")
	if !ok || !w.Begin.Equal(base.Add(-time.Hour)) {
		t.Fatalf("latest window did not win: %+v", w)
	}
	list := ws.List()
	got := []string{list[0].Handle, list[1].Handle, list[2].Handle}
	if got[0] != "B" || got[1] != "a" || got[2] != "c" {
		t.Fatalf("order = %v", got)
	}
	if _, ok := ws.Get("missing"); ok {
		t.Fatalf("Get(missing) ok")
	}
}
