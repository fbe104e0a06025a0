package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of balance movement a row explains
type TransactionType string

// Transaction types
const (
	TypeDeposit     TransactionType = "deposit"
	TypeWithdraw    TransactionType = "withdraw"
	TypeTransferOut TransactionType = "transfer_out"
	TypeTransferIn  TransactionType = "transfer_in"
)

// Transaction is an immutable record of a single balance movement
type Transaction struct {
	ID        uint64          // Assigned by the store, monotonically increasing
	AccountID uint64          // Account whose balance this row explains
	Type      TransactionType // Direction is implied by the type
	Amount    decimal.Decimal // Always positive
	TargetID  *uint64         // Counterparty, transfers only
	CreatedAt time.Time       // Assigned at insertion
}

// TransferResult holds the matched pair of rows written by a transfer
type TransferResult struct {
	Outgoing     *Transaction
	Incoming     *Transaction
	SenderName   string
	ReceiverName string
}

// NewTransaction creates a transaction record with basic validation
func NewTransaction(accountID uint64, txType TransactionType, amount decimal.Decimal, targetID *uint64) (*Transaction, error) {
	if accountID == 0 {
		return nil, errs.ErrAccountNotFound
	}
	if !IsValidTransactionType(string(txType)) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", errs.ErrInternal, txType)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	if txType.IsTransfer() {
		if targetID == nil || *targetID == 0 {
			return nil, fmt.Errorf("%w: %s requires a counterparty", errs.ErrInvalidTarget, txType)
		}
		if *targetID == accountID {
			return nil, fmt.Errorf("%w: counterparty equals owner", errs.ErrInvalidTarget)
		}
	} else if targetID != nil {
		return nil, fmt.Errorf("%w: %s cannot reference a counterparty", errs.ErrInvalidTarget, txType)
	}

	return &Transaction{
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		TargetID:  targetID,
	}, nil
}

// IsTransfer returns true for both legs of a transfer
func (t TransactionType) IsTransfer() bool {
	return t == TypeTransferOut || t == TypeTransferIn
}

// IsCredit returns true if this type increases the owner's balance
func (t TransactionType) IsCredit() bool {
	return t == TypeDeposit || t == TypeTransferIn
}

// FormattedAmount returns the amount with 2 decimal places
func (t *Transaction) FormattedAmount() string {
	return FormatAmount(t.Amount)
}

// Target returns the counterparty id, or 0 when there is none
func (t *Transaction) Target() uint64 {
	if t.TargetID == nil {
		return 0
	}
	return *t.TargetID
}

// IsValidTransactionType validates if the type is allowed
func IsValidTransactionType(txType string) bool {
	switch TransactionType(txType) {
	case TypeDeposit, TypeWithdraw, TypeTransferOut, TypeTransferIn:
		return true
	default:
		return false
	}
}
