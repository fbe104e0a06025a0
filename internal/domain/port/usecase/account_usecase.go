package usecase

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
)

// AccountUseCase manages accounts outside of money movement
type AccountUseCase interface {
	// Register creates an account with a zero balance
	Register(ctx context.Context, name, pin string) (entity.AccountView, error)

	// CheckBalance returns the current view of the session account
	CheckBalance(ctx context.Context) (entity.AccountView, error)
}

// AuthUseCase handles login, logout and session lookup
type AuthUseCase interface {
	// Login verifies credentials and opens a session on success
	Login(ctx context.Context, name, pin string) (entity.AccountView, error)

	// Logout ends the current session. Logging out without a session succeeds.
	Logout(ctx context.Context) error

	// CurrentSession returns the active session or ErrNotAuthenticated
	CurrentSession(ctx context.Context) (entity.Session, error)
}
