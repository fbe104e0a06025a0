package core

import (
	"context"
	"time"
)

// Duration is the time span used across ports, so the domain never
// passes time.Duration values it could confuse with plain integers
type Duration time.Duration

// Common duration constants
const (
	Nanosecond  Duration = Duration(time.Nanosecond)
	Microsecond          = Duration(time.Microsecond)
	Millisecond          = Duration(time.Millisecond)
	Second               = Duration(time.Second)
	Minute               = Duration(time.Minute)
	Hour                 = Duration(time.Hour)
)

// Std converts domain Duration to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats the duration like time.Duration, e.g. "1.5s"
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Milliseconds returns the duration as whole milliseconds, for log fields
func (d Duration) Milliseconds() int64 {
	return time.Duration(d).Milliseconds()
}

// TimeProvider is the clock. Production code reads time only through it
// so tests can pin Now and make Sleep instant.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) Duration
	Until(t time.Time) Duration
	Sleep(d Duration)
	WithTimeout(ctx context.Context, timeout Duration) (context.Context, context.CancelFunc)
	ParseDuration(s string) (Duration, error)
}
