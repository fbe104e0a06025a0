package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// DefaultMaxFailedAttempts is the number of consecutive failures that locks login
const DefaultMaxFailedAttempts = 3

var tracer = otel.Tracer("atm/auth")

// AuthUseCase verifies credentials under a consecutive-failure lockout
type AuthUseCase struct {
	accounts     persistence.UnitOfWork
	hasher       security.PinHasher
	lockout      security.LockoutStore
	sessions     session.Store
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	maxAttempts  int
}

var _ usecase.AuthUseCase = (*AuthUseCase)(nil)

// NewAuthUseCase creates a new auth use case. maxAttempts <= 0 uses the default of 3.
func NewAuthUseCase(
	accounts persistence.UnitOfWork,
	hasher security.PinHasher,
	lockout security.LockoutStore,
	sessions session.Store,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	maxAttempts int,
) *AuthUseCase {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxFailedAttempts
	}
	return &AuthUseCase{
		accounts:     accounts,
		hasher:       hasher,
		lockout:      lockout,
		sessions:     sessions,
		timeProvider: timeProvider,
		logger:       logger,
		maxAttempts:  maxAttempts,
	}
}

// lockoutKey is the counter key for a login name
func lockoutKey(name string) string {
	return strings.TrimSpace(name)
}

// Login verifies name and pin. Unknown names and wrong PINs both count
// as failures and are indistinguishable to the caller.
func (u *AuthUseCase) Login(ctx context.Context, name, pin string) (entity.AccountView, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	view, err := u.login(ctx, lockoutKey(name), pin)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return entity.AccountView{}, err
	}
	return view, nil
}

func (u *AuthUseCase) login(ctx context.Context, key, pin string) (entity.AccountView, error) {
	failures, err := u.lockout.Failures(ctx, key)
	if err != nil {
		u.logger.Error("Failed to read login attempts", map[string]any{
			"name":  key,
			"error": err.Error(),
		})
		return entity.AccountView{}, storeUnavailable(err)
	}
	if failures >= u.maxAttempts {
		return entity.AccountView{}, u.lockedOut(key, failures)
	}

	// The attempt is counted before the PIN is checked, so concurrent logins
	// cannot all pass the read above and get more than maxAttempts checks.
	attempt, err := u.lockout.RecordFailure(ctx, key)
	if err != nil {
		u.logger.Error("Failed to record login attempt", map[string]any{
			"name":  key,
			"error": err.Error(),
		})
		return entity.AccountView{}, storeUnavailable(err)
	}
	if attempt > u.maxAttempts {
		return entity.AccountView{}, u.lockedOut(key, attempt-1)
	}

	if entity.ValidatePIN(pin) != nil {
		return entity.AccountView{}, u.rejected(ctx, key, "malformed PIN", attempt)
	}

	account, err := u.accounts.GetAccountRepository(ctx).GetByName(ctx, key)
	if err != nil {
		if errors.Is(err, errs.ErrAccountNotFound) {
			return entity.AccountView{}, u.rejected(ctx, key, "unknown name", attempt)
		}
		return entity.AccountView{}, err
	}

	ok, err := u.hasher.Verify(pin, account.PinHash)
	if err != nil {
		u.logger.Error("Stored PIN hash could not be checked", map[string]any{
			"account_id": account.ID,
			"error":      err.Error(),
		})
		return entity.AccountView{}, fmt.Errorf("%w: %v", errs.ErrInternal, err)
	}
	if !ok {
		return entity.AccountView{}, u.rejected(ctx, key, "PIN mismatch", attempt)
	}

	if err := u.lockout.Reset(ctx, key); err != nil {
		return entity.AccountView{}, storeUnavailable(err)
	}

	sess := entity.Session{
		AccountID:   account.ID,
		AccountName: account.Name,
		IssuedAt:    u.timeProvider.Now(),
	}
	if err := u.sessions.Save(ctx, sess); err != nil {
		u.logger.Error("Failed to persist session", map[string]any{
			"account_id": account.ID,
			"error":      err.Error(),
		})
		return entity.AccountView{}, err
	}

	u.logger.Info("Login succeeded", map[string]any{
		"account_id":   account.ID,
		"operation_id": coreport.OperationID(ctx),
	})
	return account.View(), nil
}

func (u *AuthUseCase) lockedOut(key string, failures int) error {
	u.logger.Warn("Login rejected while locked out", map[string]any{
		"name":     key,
		"failures": failures,
	})
	return errs.ErrLockedOut
}

// rejected logs a failed attempt that has already been counted
func (u *AuthUseCase) rejected(ctx context.Context, key, reason string, failures int) error {
	u.logger.Warn("Login failed", map[string]any{
		"name":         key,
		"reason":       reason,
		"failures":     failures,
		"max_attempts": u.maxAttempts,
		"operation_id": coreport.OperationID(ctx),
	})
	return errs.ErrInvalidCredentials
}

// Logout clears the active session
func (u *AuthUseCase) Logout(ctx context.Context) error {
	if err := u.sessions.Clear(ctx); err != nil {
		return err
	}
	u.logger.Info("Logged out", nil)
	return nil
}

// CurrentSession returns the active session or ErrNotAuthenticated
func (u *AuthUseCase) CurrentSession(ctx context.Context) (entity.Session, error) {
	sess, ok, err := u.sessions.Load(ctx)
	if err != nil {
		return entity.Session{}, err
	}
	if !ok || sess.IsZero() {
		return entity.Session{}, errs.ErrNotAuthenticated
	}
	return sess, nil
}

func storeUnavailable(err error) error {
	if errors.Is(err, errs.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}
