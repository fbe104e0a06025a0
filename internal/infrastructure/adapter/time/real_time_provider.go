package time

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
)

// storePrecision is the resolution of Postgres timestamp columns
const storePrecision = time.Microsecond

// RealTimeProvider implements core.TimeProvider with the system clock.
// Timestamps are UTC and truncated to what the store keeps, so a value
// read back from the database equals the one that was written.
type RealTimeProvider struct{}

var _ core.TimeProvider = (*RealTimeProvider)(nil)

// NewRealTimeProvider creates a new real time provider
func NewRealTimeProvider() *RealTimeProvider {
	return &RealTimeProvider{}
}

// Now returns the current UTC time at store precision
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC().Truncate(storePrecision)
}

// Since returns the time elapsed since t
func (p *RealTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(time.Since(t))
}

// Until returns the duration until t
func (p *RealTimeProvider) Until(t time.Time) core.Duration {
	return core.Duration(time.Until(t))
}

// Sleep pauses the current goroutine for the specified duration
func (p *RealTimeProvider) Sleep(d core.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d.Std())
}

// WithTimeout returns a context that will be canceled after the specified timeout
func (p *RealTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// ParseDuration parses a Go duration string. A bare integer is read as seconds.
func (p *RealTimeProvider) ParseDuration(s string) (core.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return core.Duration(time.Duration(seconds) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}
