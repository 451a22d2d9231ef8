//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"dropwatch/internal/modkit/repokit"
	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/store"
	"dropwatch/internal/platform/store/pg/pgtest"
	"dropwatch/internal/services/dropwatch/domain"

	"github.com/google/uuid"
)

func TestMirror_RoundTrip_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "dropwatch-repo-integration",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	binder := NewPG()
	run := func(fn func(m Mirror) error) {
		t.Helper()
		if err := repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error { return fn(binder.Bind(q)) }); err != nil {
			t.Fatalf("tx: %v", err)
		}
	}

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := domain.PredictWindow("Abc", t1, t1.Add(24*time.Hour), domain.DefaultDropOffset)
	w.ID = uuid.NewString()
	w.DetectedAt = t1.Add(24 * time.Hour)

	run(func(m Mirror) error { return m.EnsureSchema(ctx) })
	run(func(m Mirror) error { return m.EnsureSchema(ctx) })
	run(func(m Mirror) error { return m.UpsertWindow(ctx, w) })

	// a later loss of the same handle replaces the row
	w2 := w
	w2.ID = uuid.NewString()
	w2.Begin = w.Begin.Add(48 * time.Hour)
	w2.End = w.End.Add(48 * time.Hour)
	run(func(m Mirror) error { return m.UpsertWindow(ctx, w2) })

	run(func(m Mirror) error {
		got, ok, err := m.WindowByHandle(ctx, "ABC")
		if err != nil || !ok {
			t.Fatalf("WindowByHandle = %v %v", ok, err)
		}
		if got.ID != w2.ID || got.Handle != "abc" || !got.Begin.Equal(w2.Begin) || !got.End.Equal(w2.End) {
			t.Fatalf("got %+v, want %+v", got, w2)
		}
		n, err := m.CountWindows(ctx)
		if err != nil || n != 1 {
			t.Fatalf("CountWindows = %d %v", n, err)
		}
		if _, ok, err := m.WindowByHandle(ctx, "nobody"); ok || err != nil {
			t.Fatalf("missing handle = %v %v", ok, err)
		}
		return nil
	})

	bad := w
	bad.ID = uuid.NewString()
	bad.Begin, bad.End = w.End, w.Begin
	err = repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error { return binder.Bind(q).UpsertWindow(ctx, bad) })
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("check violation code = %v (%v)", perr.CodeOf(err), err)
	}
}
