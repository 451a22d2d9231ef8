// Package time contains time related helpers
package time

import "time"

// Clock returns the current instant; services hold one so tests can pin time
type Clock func() time.Time

// System is the wall clock in UTC
func System() time.Time { return time.Now().UTC() }

// Span is a duration broken into whole days, hours, minutes and seconds
type Span struct {
	Days, Hours, Minutes, Seconds int64
}

// Breakdown splits d (truncated to seconds, negatives clamp to zero) into a Span
func Breakdown(d time.Duration) Span {
	if d < 0 {
		d = 0
	}
	s := int64(d / time.Second)
	return Span{
		Days:    s / 86400,
		Hours:   s % 86400 / 3600,
		Minutes: s % 3600 / 60,
		Seconds: s % 60,
	}
}
