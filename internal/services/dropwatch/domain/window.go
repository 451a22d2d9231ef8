package domain

import (
	"time"
)

// DefaultDropOffset is the re-availability delay applied to both window edges
const DefaultDropOffset = 37 * 24 * time.Hour

// DefaultZone is the reporting time zone for rendered instants
const DefaultZone = "Europe/Paris"

// Window is the predicted interval during which a lost handle becomes claimable again
type Window struct {
	ID         string
	Handle     string
	Begin      time.Time
	End        time.Time
	DetectedAt time.Time
}

// PredictWindow computes the drop window for a loss: Begin = seen + offset, End = lost + offset.
// Begin <= End holds whenever seen <= lost
func PredictWindow(handle string, seen, lost time.Time, offset time.Duration) Window {
	return Window{
		Handle: handle,
		Begin:  seen.Add(offset),
		End:    lost.Add(offset),
	}
}

// Duration is the width of the window
func (w Window) Duration() time.Duration { return w.End.Sub(w.Begin) }

// FormatInstant renders t in loc as RFC3339 with fractional seconds and the zone offset
func FormatInstant(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.RFC3339Nano)
}

// LogRecord is the durable line format for a window
type LogRecord struct {
	Username string `json:"username"`
	Begin    string `json:"begin"`
	End      string `json:"end"`
}

// Record renders w for the durable log in loc
func (w Window) Record(loc *time.Location) LogRecord {
	return LogRecord{
		Username: w.Handle,
		Begin:    FormatInstant(w.Begin, loc),
		End:      FormatInstant(w.End, loc),
	}
}

// View is the status API rendering of a window
type View struct {
	ID         string `json:"id"`
	Handle     string `json:"handle"`
	Begin      string `json:"begin"`
	End        string `json:"end"`
	DetectedAt string `json:"detected_at"`
	Seconds    int64  `json:"width_seconds"`
}

// View renders w for the status API in loc
func (w Window) View(loc *time.Location) View {
	return View{
		ID:         w.ID,
		Handle:     w.Handle,
		Begin:      FormatInstant(w.Begin, loc),
		End:        FormatInstant(w.End, loc),
		DetectedAt: FormatInstant(w.DetectedAt, loc),
		Seconds:    int64(w.Duration() / time.Second),
	}
}
