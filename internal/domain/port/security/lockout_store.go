package security

import "context"

// LockoutStore counts consecutive failed logins per key.
// Implementations must survive process restarts if lockout is to hold across CLI invocations.
type LockoutStore interface {
	// Failures returns the current consecutive failure count for key
	Failures(ctx context.Context, key string) (int, error)

	// RecordFailure increments the failure count and returns the new value
	RecordFailure(ctx context.Context, key string) (int, error)

	// Reset clears the failure count for key
	Reset(ctx context.Context, key string) error
}
