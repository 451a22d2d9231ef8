// Package droplog appends drop windows to a JSON-lines file
package droplog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/services/dropwatch/domain"
)

// File is an append-only JSONL log; each line is one window in the reporting zone
type File struct {
	mu   sync.Mutex
	path string
	loc  *time.Location
}

// Open returns a File appending to path, rendering timestamps in loc
func Open(path string, loc *time.Location) *File {
	if loc == nil {
		loc = time.UTC
	}
	return &File{path: path, loc: loc}
}

// Path is the file being appended to
func (f *File) Path() string { return f.path }

// Append writes w as one line. The file is opened per call so rotation by an
// external tool is picked up
func (f *File) Append(w domain.Window) error {
	line, err := json.Marshal(w.Record(f.loc))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode window record")
	}
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "open %s", f.path)
	}
	if _, err := fh.Write(line); err != nil {
		_ = fh.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "append %s", f.path)
	}
	return perr.WrapIf(fh.Close(), perr.ErrorCodeUnavailable, "close drop log")
}
