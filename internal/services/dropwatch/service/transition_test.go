package service

import (
	"testing"
	"time"

	"dropwatch/internal/services/dropwatch/domain"
	"dropwatch/internal/services/dropwatch/repo"
)

var (
	t1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	t3 = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func TestMergeDetectsLoss(t *testing.T) {
	t.Parallel()

	h := repo.NewHandles(8)
	h.Seed([]string{"abc"})
	d := NewDetector(h)

	if l := d.Merge([]domain.Observation{{Handle: "abc", Identity: "X"}}, t1); len(l) != 0 {
		t.Fatalf("first sighting produced %v", l)
	}
	l := d.Merge([]domain.Observation{{Handle: "ABC"}}, t2)
	if len(l) != 1 {
		t.Fatalf("losses = %v", l)
	}
	if l[0] != (domain.Loss{Handle: "abc", Seen: t1, Lost: t2}) {
		t.Fatalf("loss = %+v", l[0])
	}
	if r, _ := h.Get("abc"); r.Bound() || !r.LastSeen.Equal(t2) {
		t.Fatalf("record after loss = %+v", r)
	}
	if l := d.Merge([]domain.Observation{{Handle: "abc"}}, t3); len(l) != 0 {
		t.Fatalf("re-delivered absence produced %v", l)
	}
}

func TestMergeFirstSeenInsertsWithoutLoss(t *testing.T) {
	t.Parallel()

	h := repo.NewHandles(8)
	d := NewDetector(h)
	if l := d.Merge([]domain.Observation{{Handle: "new", Identity: "Y"}, {Handle: "gone"}}, t1); len(l) != 0 {
		t.Fatalf("losses = %v", l)
	}
	if r, ok := h.Get("new"); !ok || r.Identity != "Y" || !r.LastSeen.Equal(t1) {
		t.Fatalf("record = %+v ok=%v", r, ok)
	}
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
}

func TestMergeIgnoresOutOfOrderAbsence(t *testing.T) {
	t.Parallel()

	h := repo.NewHandles(8)
	d := NewDetector(h)
	d.Merge([]domain.Observation{{Handle: "abc", Identity: "X"}}, t2)
	if l := d.Merge([]domain.Observation{{Handle: "abc"}}, t1); len(l) != 0 {
		t.Fatalf("absence older than last sighting produced %v", l)
	}
	if r, _ := h.Get("abc"); r.Identity != "X" || !r.LastSeen.Equal(t2) {
		t.Fatalf("older absence overwrote record: %+v", r)
	}
	l := d.Merge([]domain.Observation{{Handle: "abc"}}, t3)
	if len(l) != 1 || l[0] != (domain.Loss{Handle: "abc", Seen: t2, Lost: t3}) {
		t.Fatalf("losses after fresh absence = %v", l)
	}
}

func TestMergeIgnoresOutOfOrderSighting(t *testing.T) {
	t.Parallel()

	h := repo.NewHandles(8)
	d := NewDetector(h)
	d.Merge([]domain.Observation{{Handle: "abc"}}, t2)
	d.Merge([]domain.Observation{{Handle: "abc", Identity: "X"}}, t1)
	if r, _ := h.Get("abc"); r.Bound() || !r.LastSeen.Equal(t2) {
		t.Fatalf("older sighting overwrote record: %+v", r)
	}
}

func TestMergeRegainKeepsUpdating(t *testing.T) {
	t.Parallel()

	h := repo.NewHandles(8)
	d := NewDetector(h)
	d.Merge([]domain.Observation{{Handle: "abc", Identity: "X"}}, t1)
	d.Merge([]domain.Observation{{Handle: "abc"}}, t2)
	if l := d.Merge([]domain.Observation{{Handle: "abc", Identity: "Z"}}, t3); len(l) != 0 {
		t.Fatalf("regain produced %v", l)
	}
	if r, _ := h.Get("abc"); r.Identity != "Z" {
		t.Fatalf("record = %+v", r)
	}
}
