package droplog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dropwatch/internal/services/dropwatch/domain"
)

func readRecords(t *testing.T, path string) []domain.LogRecord {
	t.Helper()
	fh, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = fh.Close() }()
	var out []domain.LogRecord
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		var r domain.LogRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		out = append(out, r)
	}
	return out
}

func TestAppendFormat(t *testing.T) {
	t.Parallel()

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	path := filepath.Join(t.TempDir(), "drop_windows.txt")
	f := Open(path, paris)
	w := domain.Window{
		Handle: "abc",
		Begin:  time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC),
	}
	if err := f.Append(w); err != nil {
		t.Fatalf("Append err = %v", err)
	}
	recs := readRecords(t, path)
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
	want := domain.LogRecord{Username: "abc", Begin: "2024-02-07T01:00:00+01:00", End: "2024-02-08T01:00:00+01:00"}
	if recs[0] != want {
		t.Fatalf("record = %+v want %+v", recs[0], want)
	}
	begin, err := time.Parse(time.RFC3339Nano, recs[0].Begin)
	if err != nil || !begin.Equal(w.Begin) {
		t.Fatalf("begin does not round trip: %v %v", begin, err)
	}
}

func TestConcurrentAppendsKeepLinesIntact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "drop_windows.txt")
	f := Open(path, nil)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			_ = f.Append(domain.Window{Handle: string(rune('a' + i%26)), Begin: time.Unix(int64(i), 0), End: time.Unix(int64(i+1), 0)})
		})
	}
	wg.Wait()
	if got := len(readRecords(t, path)); got != 50 {
		t.Fatalf("records = %d want 50", got)
	}
}

func TestAppendUnwritablePath(t *testing.T) {
	t.Parallel()

	f := Open(filepath.Join(t.TempDir(), "missing", "dir", "log.txt"), nil)
	if err := f.Append(domain.Window{Handle: "x"}); err == nil {
		t.Fatalf("want error for unwritable path")
	}
}
