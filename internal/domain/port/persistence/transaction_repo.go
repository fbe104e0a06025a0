package persistence

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
)

// TransactionRepository stores the append-only transaction log
type TransactionRepository interface {
	// Create appends a transaction row and fills in its ID and CreatedAt
	//
	// Possible errors:
	// - ErrAccountNotFound: If the owning account does not exist
	// - ErrTargetNotFound: If the counterparty does not exist
	// - ErrStoreUnavailable: If the database cannot be reached
	Create(ctx context.Context, transaction *entity.Transaction) error
}
