package repo

import (
	"context"
	stderrs "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dropwatch/internal/modkit/repokit"
	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/services/dropwatch/domain"
)

// Mirror is the Postgres copy of the window registry
type Mirror interface {
	EnsureSchema(ctx context.Context) error
	UpsertWindow(ctx context.Context, w domain.Window) error
	WindowByHandle(ctx context.Context, handle string) (domain.Window, bool, error)
	CountWindows(ctx context.Context) (int, error)
}

type (
	// PG is a Postgres window mirror
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG constructs a Postgres window mirror binder
func NewPG() repokit.Binder[Mirror] { return PG{} }

// Bind binds a Queryer to a Postgres implementation of Mirror
func (PG) Bind(q repokit.Queryer) Mirror { return &queries{q: q} }

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS drop_windows (
		handle      text        PRIMARY KEY,
		window_id   uuid        NOT NULL,
		begin_at    timestamptz NOT NULL,
		end_at      timestamptz NOT NULL,
		detected_at timestamptz NOT NULL,
		updated_at  timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT drop_windows_order CHECK (begin_at <= end_at)
	)
`

// EnsureSchema creates the drop_windows table when missing
func (r *queries) EnsureSchema(ctx context.Context) error {
	_, err := r.q.Exec(ctx, schemaSQL)
	return perr.FromPostgres(err, "ensure drop_windows")
}

// UpsertWindow writes w; the latest window of a handle wins
func (r *queries) UpsertWindow(ctx context.Context, w domain.Window) error {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "window id %q", w.ID)
	}
	const sql = `
		INSERT INTO drop_windows (handle, window_id, begin_at, end_at, detected_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (handle) DO UPDATE SET
			window_id   = excluded.window_id,
			begin_at    = excluded.begin_at,
			end_at      = excluded.end_at,
			detected_at = excluded.detected_at,
			updated_at  = now()
	`
	_, err = r.q.Exec(ctx, sql,
		domain.NormalizeHandle(w.Handle), id, w.Begin.UTC(), w.End.UTC(), w.DetectedAt.UTC())
	return perr.FromPostgres(err, "upsert drop window")
}

// WindowByHandle reads the mirrored window of handle
func (r *queries) WindowByHandle(ctx context.Context, handle string) (domain.Window, bool, error) {
	const sql = `
		SELECT handle, window_id::text, begin_at, end_at, detected_at
		FROM drop_windows
		WHERE handle = $1
	`
	var w domain.Window
	var begin, end, detectedAt time.Time
	err := r.q.QueryRow(ctx, sql, domain.NormalizeHandle(handle)).Scan(&w.Handle, &w.ID, &begin, &end, &detectedAt)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return domain.Window{}, false, nil
		}
		return domain.Window{}, false, perr.FromPostgres(err, "read drop window")
	}
	w.Begin, w.End, w.DetectedAt = begin.UTC(), end.UTC(), detectedAt.UTC()
	return w, true, nil
}

// CountWindows returns the number of mirrored windows
func (r *queries) CountWindows(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM drop_windows`).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "count drop windows")
	}
	return n, nil
}
