// Package version reports the build stamp of the dropwatch binary
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information.
// Set with -ldflags "-X 'dropwatch/internal/core/version.version=v0.1.0'
// -X 'dropwatch/internal/core/version.commit=abcd' -X 'dropwatch/internal/core/version.date=2026-10-01'"
func Info() BuildInfo {
	return BuildInfo{
		Service: "dropwatch",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
