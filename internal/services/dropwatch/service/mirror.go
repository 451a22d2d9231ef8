package service

import (
	"context"
	"time"

	"dropwatch/internal/modkit/repokit"
	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/services/dropwatch/domain"
	"dropwatch/internal/services/dropwatch/repo"
)

const (
	mirrorStatementTimeout = 5 * time.Second
	mirrorRetries          = 3
	mirrorRetryBase        = 200 * time.Millisecond
)

// pgMirror writes windows through the repo binder inside short transactions
type pgMirror struct {
	raw    repokit.TxRunner
	db     repokit.TxRunner
	binder repokit.Binder[repo.Mirror]
	sleep  func(ctx context.Context, d time.Duration) error
}

func newPGMirror(db repokit.TxRunner) *pgMirror {
	return &pgMirror{
		raw:    db,
		db:     repokit.WithBeginHooks(db, repokit.StatementTimeout(mirrorStatementTimeout)),
		binder: repo.NewPG(),
		sleep:  sleepCtx,
	}
}

// Ping checks the backend when it can report readiness
func (m *pgMirror) Ping(ctx context.Context) error {
	if p, ok := m.raw.(repokit.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// EnsureSchema creates the mirror table if needed
func (m *pgMirror) EnsureSchema(ctx context.Context) error {
	return repokit.WithTx(ctx, m.db, func(q repokit.Queryer) error {
		return repokit.MustBind(m.binder, q).EnsureSchema(ctx)
	})
}

// UpsertWindow writes w, retrying transient database conflicts
func (m *pgMirror) UpsertWindow(ctx context.Context, w domain.Window) error {
	var err error
	for attempt := range mirrorRetries {
		err = repokit.WithTx(ctx, m.db, func(q repokit.Queryer) error {
			return repokit.MustBind(m.binder, q).UpsertWindow(ctx, w)
		})
		if err == nil || !perr.IsRetryable(err) {
			return err
		}
		if serr := m.sleep(ctx, mirrorRetryBase<<attempt); serr != nil {
			return err
		}
	}
	return perr.WithOp(err, "mirror.retries_exhausted")
}

// sleepCtx waits d or until ctx ends
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
