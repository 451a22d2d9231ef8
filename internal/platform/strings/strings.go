// Package strings provides string and line helpers
package strings

import (
	"bufio"
	"io"
	std "strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// FoldKey returns the trimmed, case-folded form of s used as a map key.
// A cases.Caser is stateful, so one is built per call
func FoldKey(s string) string {
	s = std.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

// Lines reads newline-delimited entries, trimming each and skipping blanks
func Lines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := std.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}
