package persistence

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the methods needed to read and mutate accounts
type AccountRepository interface {
	// Create inserts a new account and assigns its ID
	//
	// Possible errors:
	// - ErrDuplicateAccount: If the name is already registered
	// - ErrStoreUnavailable: If the database cannot be reached
	Create(ctx context.Context, account *entity.Account) error

	// GetByID retrieves an account without locking it
	//
	// Possible errors:
	// - ErrAccountNotFound: If no account has the given ID
	// - ErrStoreUnavailable: If the database cannot be reached
	GetByID(ctx context.Context, id uint64) (*entity.Account, error)

	// GetByName retrieves an account by its login handle
	//
	// Possible errors:
	// - ErrAccountNotFound: If no account has the given name
	// - ErrStoreUnavailable: If the database cannot be reached
	GetByName(ctx context.Context, name string) (*entity.Account, error)

	// LockForUpdate takes row locks on the given accounts in ascending ID order
	// and returns the ones that exist. Missing IDs are simply absent from the map.
	// Must be called inside a unit of work.
	//
	// Possible errors:
	// - ErrConcurrencyConflict: On lock timeout or deadlock
	// - ErrStoreUnavailable: If the database cannot be reached
	LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*entity.Account, error)

	// UpdateBalance writes a new balance if the stored version still equals
	// expectedVersion, and bumps the version.
	//
	// Possible errors:
	// - ErrConcurrencyConflict: If the version moved since the account was read
	// - ErrInsufficientFunds: If the store rejects a negative balance
	// - ErrStoreUnavailable: If the database cannot be reached
	UpdateBalance(ctx context.Context, id uint64, expectedVersion uint64, balance decimal.Decimal) error
}
