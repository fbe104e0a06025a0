package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized responses and structured logs
const (
	// 4xxx - Client errors
	CodeInsufficientFunds  = 4001
	CodeInvalidAmount      = 4002
	CodeInvalidTarget      = 4003
	CodeInvalidPIN         = 4004
	CodeInvalidName        = 4005
	CodeNotAuthenticated   = 4010
	CodeInvalidCredentials = 4011
	CodeAccountNotFound    = 4040
	CodeTargetNotFound     = 4041
	CodeConcurrency        = 4090
	CodeDuplicateAccount   = 4091
	CodeLockedOut          = 4230

	// 5xxx - Server errors
	CodeStoreUnavailable = 5030
	CodeInternal         = 5000
)

// Base error types
var (
	// ErrNotAuthenticated is returned when an operation needs a session and none is active
	ErrNotAuthenticated = errors.New("not authenticated: please login first")

	// ErrAccountNotFound is returned when the session's account no longer exists
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned when an amount is not a finite positive decimal
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a debit exceeds the current balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTargetNotFound is returned when the transfer counterparty does not exist
	ErrTargetNotFound = errors.New("target account not found")

	// ErrInvalidTarget is returned for transfers to the sender's own account
	ErrInvalidTarget = errors.New("invalid transfer target")

	// ErrInvalidCredentials is returned for unknown names and wrong PINs alike
	ErrInvalidCredentials = errors.New("invalid name or PIN")

	// ErrLockedOut is returned once the failed login threshold has been reached
	ErrLockedOut = errors.New("too many failed login attempts: account locked")

	// ErrStoreUnavailable is returned when the database cannot be reached or times out
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConcurrencyConflict is returned when a concurrent mutation won the race
	ErrConcurrencyConflict = errors.New("concurrent update conflict")

	// ErrDuplicateAccount is returned when registering a name that is already taken
	ErrDuplicateAccount = errors.New("account name already registered")

	// ErrInvalidPIN is returned when a PIN is not exactly 6 ASCII digits
	ErrInvalidPIN = errors.New("PIN must be exactly 6 digits")

	// ErrInvalidName is returned when an account name is empty or too long
	ErrInvalidName = errors.New("invalid account name")

	// ErrInternal is returned for unexpected failures
	ErrInternal = errors.New("internal error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidTarget):
		return CodeInvalidTarget
	case errors.Is(err, ErrInvalidPIN):
		return CodeInvalidPIN
	case errors.Is(err, ErrInvalidName):
		return CodeInvalidName
	case errors.Is(err, ErrNotAuthenticated):
		return CodeNotAuthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrTargetNotFound):
		return CodeTargetNotFound
	case errors.Is(err, ErrConcurrencyConflict):
		return CodeConcurrency
	case errors.Is(err, ErrDuplicateAccount):
		return CodeDuplicateAccount
	case errors.Is(err, ErrLockedOut):
		return CodeLockedOut
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}

// IsRetryable reports whether the caller may retry the same operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConcurrencyConflict)
}

// InsufficientFundsError provides detailed error information for insufficient funds
type InsufficientFundsError struct {
	AccountID   uint64
	Amount      string
	CurrBalance string
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %d: requested %s, available %s",
		e.AccountID, e.Amount, e.CurrBalance)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_funds",
		"account_id":      e.AccountID,
		"amount":          e.Amount,
		"current_balance": e.CurrBalance,
		"error_code":      CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(accountID uint64, amount, currentBalance string) error {
	return &InsufficientFundsError{
		AccountID:   accountID,
		Amount:      amount,
		CurrBalance: currentBalance,
	}
}

// OperationError describes a failed engine operation
type OperationError struct {
	Operation string
	AccountID uint64
	TargetID  uint64
	Amount    string
	Err       error
}

// Error implements the error interface for OperationError
func (e *OperationError) Error() string {
	if e.TargetID != 0 {
		return fmt.Sprintf("%s of %s from account %d to %d failed: %v",
			e.Operation, e.Amount, e.AccountID, e.TargetID, e.Err)
	}
	return fmt.Sprintf("%s of %s on account %d failed: %v", e.Operation, e.Amount, e.AccountID, e.Err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *OperationError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "operation_error",
		"operation":  e.Operation,
		"account_id": e.AccountID,
		"amount":     e.Amount,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
	if e.TargetID != 0 {
		fields["target_id"] = e.TargetID
	}
	return fields
}

// NewOperationError creates a detailed operation error
func NewOperationError(operation string, accountID, targetID uint64, amount string, err error) error {
	return &OperationError{
		Operation: operation,
		AccountID: accountID,
		TargetID:  targetID,
		Amount:    amount,
		Err:       err,
	}
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsConcurrencyConflict checks if the error was caused by a concurrent mutation
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
