package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"

	kit "dropwatch/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	in := "INSERT INTO drop_windows\n\t(handle, begin_at)\n  VALUES ($1, $2)"
	if got := compact(in); got != "INSERT INTO drop_windows (handle, begin_at) VALUES ($1, $2)" {
		t.Fatalf("compact = %q", got)
	}
}

func TestTracer_LevelsBySlowAndErr(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	tr.OnQuery(context.Background(), QueryEvent{SQL: "select 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "select 2", Slow: true})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "select 3", Err: errors.New("boom")})

	out := buf.String()
	kit.MustContain(t, out, `"level":"debug"`)
	kit.MustContain(t, out, `"elapsed_ms":1.5`)
	kit.MustContain(t, out, `"level":"warn"`)
	kit.MustContain(t, out, "boom")
	kit.MustContain(t, out, `"component":"pg"`)
}
