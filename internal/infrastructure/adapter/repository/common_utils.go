package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
	CheckError        ErrorType = "check"
	ForeignKeyError   ErrorType = "foreign_key"
	RangeError        ErrorType = "range"
	UnknownError      ErrorType = "unknown"
)

// PostgreSQL SQLSTATE codes the repositories react to
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
	sqlStateNumericOutOfRange    = "22003"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateQueryCanceled        = "57014"
	sqlStateAdminShutdown        = "57P01"
	sqlStateCrashShutdown        = "57P02"
	sqlStateCannotConnectNow     = "57P03"
)

// Constraint names declared on the models
const (
	constraintBalanceNonNegative = "chk_accounts_balance_non_negative"
	constraintAmountPositive     = "chk_transactions_amount_positive"
	constraintTransactionTarget  = "fk_transactions_target"
)

// ErrorClassifier provides methods to classify database errors
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return DuplicateKeyError
		case sqlStateForeignKeyViolation:
			return ForeignKeyError
		case sqlStateCheckViolation:
			return CheckError
		case sqlStateNumericOutOfRange:
			return RangeError
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return LockError
		case sqlStateQueryCanceled, sqlStateAdminShutdown, sqlStateCrashShutdown, sqlStateCannotConnectNow:
			return ConnectionError
		}
		// Class 08 is connection exception, class 53 is insufficient resources
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "53") {
			return ConnectionError
		}
		return UnknownError
	}

	if c.IsConnectionError(err) {
		return ConnectionError
	}
	if c.IsLockError(err) {
		return LockError
	}
	if c.IsDuplicateKeyError(err) {
		return DuplicateKeyError
	}

	return UnknownError
}

// ToDomainError maps a database error onto the domain error kinds.
// The original message is kept after the sentinel for logs.
func (c *ErrorClassifier) ToDomainError(err error) error {
	if err == nil {
		return nil
	}

	switch c.Classify(err) {
	case DuplicateKeyError:
		return fmt.Errorf("%w: %s", errs.ErrDuplicateAccount, err.Error())
	case LockError:
		return fmt.Errorf("%w: %s", errs.ErrConcurrencyConflict, err.Error())
	case ConnectionError:
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
	case RangeError:
		return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	case CheckError:
		switch constraintName(err) {
		case constraintBalanceNonNegative:
			return fmt.Errorf("%w: %s", errs.ErrInsufficientFunds, err.Error())
		case constraintAmountPositive:
			return fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
		}
	case ForeignKeyError:
		if constraintName(err) == constraintTransactionTarget {
			return fmt.Errorf("%w: %s", errs.ErrTargetNotFound, err.Error())
		}
		return fmt.Errorf("%w: %s", errs.ErrAccountNotFound, err.Error())
	}

	return fmt.Errorf("%w: %s", errs.ErrInternal, err.Error())
}

// IsDuplicateKeyError checks if the error is a duplicate key error
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}

// IsLockError checks if the error is due to locking
func (c *ErrorClassifier) IsLockError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.Classify(err) == LockError
	}
	return strings.Contains(err.Error(), "deadlock") ||
		strings.Contains(err.Error(), "lock timeout") ||
		strings.Contains(err.Error(), "could not serialize access")
}

// IsConnectionError checks if the error is related to database connectivity
// or an expired deadline
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if isContextError(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.Classify(err) == ConnectionError
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) || errors.As(err, &netErr) || pgconn.Timeout(err) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "server closed") ||
		strings.Contains(msg, "conn closed")
}

// isContextError checks if an error is related to context timeout or cancellation
func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
