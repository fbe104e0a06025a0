package usecase

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
)

// TransactionUseCase moves money for the logged-in account.
// Amounts are raw user input and are validated before anything is read.
type TransactionUseCase interface {
	// Deposit adds amount to the session account and returns the inserted row
	Deposit(ctx context.Context, amount string) (*entity.Transaction, error)

	// Withdraw removes amount from the session account and returns the inserted row
	Withdraw(ctx context.Context, amount string) (*entity.Transaction, error)

	// Transfer moves amount from the session account to targetID
	Transfer(ctx context.Context, amount string, targetID uint64) (*entity.TransferResult, error)
}
