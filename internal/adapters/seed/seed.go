// Package seed loads the newline-delimited proxy and handle lists
package seed

import (
	stderrs "errors"
	"io/fs"
	"os"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	pstrings "dropwatch/internal/platform/strings"
	"dropwatch/internal/services/dropwatch/domain"
)

// Lines reads path into trimmed, non-blank lines. A missing file yields no lines and no error
func Lines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrs.Is(err, fs.ErrNotExist) {
			logger.Named("seed").Warn().Str("path", path).Msg("seed file missing, treating as empty")
			return nil, nil
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	lines, err := pstrings.Lines(f)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read %s", path)
	}
	return lines, nil
}

// Proxies returns the proxy entries of path
func Proxies(path string) ([]string, error) { return Lines(path) }

// Handles returns the normalized, de-duplicated handles of path in file order
func Handles(path string) ([]string, error) {
	lines, err := Lines(path)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		k := domain.NormalizeHandle(l)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	logger.Named("seed").Info().Str("path", path).Int("handles", len(out)).Int("duplicates", len(lines)-len(out)).Msg("handles loaded")
	return out, nil
}
