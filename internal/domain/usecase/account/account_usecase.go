package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
)

// AccountUseCase implements registration and balance inquiry
type AccountUseCase struct {
	uow          persistence.UnitOfWork
	hasher       security.PinHasher
	sessions     session.Store
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewAccountUseCase creates a new account use case instance
func NewAccountUseCase(
	uow persistence.UnitOfWork,
	hasher security.PinHasher,
	sessions session.Store,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) usecase.AccountUseCase {
	return &AccountUseCase{
		uow:          uow,
		hasher:       hasher,
		sessions:     sessions,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Register creates a new account with a zero balance
func (u *AccountUseCase) Register(ctx context.Context, name, pin string) (entity.AccountView, error) {
	normalized, err := entity.NormalizeName(name)
	if err != nil {
		return entity.AccountView{}, err
	}
	if err := entity.ValidatePIN(pin); err != nil {
		return entity.AccountView{}, err
	}

	repo := u.uow.GetAccountRepository(ctx)

	// Check the name up front for a clean error; the unique index still guards races
	if _, err := repo.GetByName(ctx, normalized); err == nil {
		return entity.AccountView{}, fmt.Errorf("%w: %s", errs.ErrDuplicateAccount, normalized)
	} else if !errors.Is(err, errs.ErrAccountNotFound) {
		return entity.AccountView{}, err
	}

	pinHash, err := u.hasher.Hash(pin)
	if err != nil {
		u.logger.Error("Failed to hash PIN", map[string]any{
			"name":  normalized,
			"error": err.Error(),
		})
		return entity.AccountView{}, fmt.Errorf("%w: %v", errs.ErrInternal, err)
	}

	account, err := entity.NewAccount(normalized, pinHash, u.timeProvider)
	if err != nil {
		return entity.AccountView{}, err
	}

	if err := repo.Create(ctx, account); err != nil {
		u.logger.Error("Failed to create account", map[string]any{
			"name":         normalized,
			"error":        err.Error(),
			"operation_id": coreport.OperationID(ctx),
		})
		return entity.AccountView{}, err
	}

	u.logger.Info("Account registered", map[string]any{
		"account_id":   account.ID,
		"name":         account.Name,
		"operation_id": coreport.OperationID(ctx),
	})
	return account.View(), nil
}

// CheckBalance returns the current view of the session account
func (u *AccountUseCase) CheckBalance(ctx context.Context) (entity.AccountView, error) {
	sess, ok, err := u.sessions.Load(ctx)
	if err != nil {
		return entity.AccountView{}, err
	}
	if !ok || sess.IsZero() {
		return entity.AccountView{}, errs.ErrNotAuthenticated
	}

	account, err := u.uow.GetAccountRepository(ctx).GetByID(ctx, sess.AccountID)
	if err != nil {
		u.logger.Warn("Failed to read balance", map[string]any{
			"account_id":   sess.AccountID,
			"error":        err.Error(),
			"operation_id": coreport.OperationID(ctx),
		})
		return entity.AccountView{}, err
	}

	u.logger.Debug("Balance retrieved", map[string]any{
		"account_id": account.ID,
		"balance":    account.FormattedBalance(),
	})
	return account.View(), nil
}
