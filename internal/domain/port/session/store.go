package session

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
)

// Store persists the active session between CLI invocations
type Store interface {
	// Save replaces any existing session
	Save(ctx context.Context, session entity.Session) error

	// Load returns the active session. ok is false when none exists.
	// A session that exists but cannot be trusted returns ErrNotAuthenticated.
	Load(ctx context.Context) (session entity.Session, ok bool, err error)

	// Clear removes the active session. Clearing an absent session is not an error.
	Clear(ctx context.Context) error
}
