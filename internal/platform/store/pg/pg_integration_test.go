//go:build integration_pg

package pg

import (
	"context"
	"testing"
	"time"

	"dropwatch/internal/platform/store/pg/pgtest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpen_And_BasicQueries_Integration(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	WithTestDB(t, Config{URL: dsn, AppName: "dropwatch-pg-integration"}, func(pc *pgxpool.Config) {
		pc.MinConns = 1
	}, func(p *PG) {
		conn := AcquireConn(t, p, ctx)

		if _, err := conn.Exec(ctx, `create temporary table w (handle text primary key, begin_at timestamptz)`); err != nil {
			t.Fatalf("create temp table failed: %v", err)
		}

		begin := time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)
		batch := &pgx.Batch{}
		batch.Queue(`insert into w (handle, begin_at) values ($1,$2)`, "abc", begin)
		batch.Queue(`insert into w (handle, begin_at) values ($1,$2)
			on conflict (handle) do update set begin_at = excluded.begin_at`, "abc", begin.Add(time.Hour))
		br := conn.SendBatch(ctx, batch)
		for i := 0; i < 2; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				t.Fatalf("insert %d failed: %v", i, err)
			}
		}
		if err := br.Close(); err != nil {
			t.Fatalf("batch close: %v", err)
		}

		var got time.Time
		if err := conn.QueryRow(ctx, `select begin_at from w where handle = 'abc'`).Scan(&got); err != nil {
			t.Fatalf("select: %v", err)
		}
		if !got.Equal(begin.Add(time.Hour)) {
			t.Fatalf("upsert kept %v", got)
		}

		var app string
		if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&app); err != nil {
			t.Fatalf("check app name: %v", err)
		}
		if app != "dropwatch-pg-integration" {
			t.Fatalf("application_name mismatch: %q", app)
		}
	})
}
