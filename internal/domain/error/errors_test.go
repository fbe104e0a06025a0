package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestBaseErrorTypes(t *testing.T) {
	if ErrInsufficientFunds.Error() != "insufficient funds" {
		t.Errorf("ErrInsufficientFunds has unexpected message: %s", ErrInsufficientFunds.Error())
	}
	if ErrInvalidCredentials.Error() != "invalid name or PIN" {
		t.Errorf("ErrInvalidCredentials has unexpected message: %s", ErrInvalidCredentials.Error())
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InsufficientFunds", ErrInsufficientFunds, 4001},
		{"InvalidAmount", ErrInvalidAmount, 4002},
		{"InvalidTarget", ErrInvalidTarget, 4003},
		{"NotAuthenticated", ErrNotAuthenticated, 4010},
		{"InvalidCredentials", ErrInvalidCredentials, 4011},
		{"AccountNotFound", ErrAccountNotFound, 4040},
		{"TargetNotFound", ErrTargetNotFound, 4041},
		{"ConcurrencyConflict", ErrConcurrencyConflict, 4090},
		{"LockedOut", ErrLockedOut, 4230},
		{"StoreUnavailable", ErrStoreUnavailable, 5030},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrTargetNotFound), 4041},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := NewInsufficientFundsError(7, "150.00", "100.00")

	expected := "insufficient funds in account 7: requested 150.00, available 100.00"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Error("expected errors.Is to match ErrInsufficientFunds")
	}
	if !IsInsufficientFundsError(fmt.Errorf("withdraw: %w", err)) {
		t.Error("expected wrapped error to be detected")
	}

	var detailed *InsufficientFundsError
	if !errors.As(err, &detailed) {
		t.Fatal("expected errors.As to succeed")
	}
	fields := detailed.LogFields()
	if fields["error_code"] != CodeInsufficientFunds {
		t.Errorf("unexpected error_code field: %v", fields["error_code"])
	}
}

func TestOperationError(t *testing.T) {
	t.Run("single account", func(t *testing.T) {
		err := NewOperationError("withdraw", 3, 0, "40.00", ErrStoreUnavailable)

		if !errors.Is(err, ErrStoreUnavailable) {
			t.Error("expected OperationError to unwrap to the cause")
		}
		expected := "withdraw of 40.00 on account 3 failed: store unavailable"
		if err.Error() != expected {
			t.Errorf("Error() = %s, want %s", err.Error(), expected)
		}
	})

	t.Run("transfer", func(t *testing.T) {
		err := NewOperationError("transfer", 3, 9, "60.00", ErrConcurrencyConflict)

		var opErr *OperationError
		if !errors.As(err, &opErr) {
			t.Fatal("expected errors.As to succeed")
		}
		fields := opErr.LogFields()
		if fields["target_id"] != uint64(9) {
			t.Errorf("expected target_id field, got %v", fields["target_id"])
		}
		if fields["error_code"] != CodeConcurrency {
			t.Errorf("unexpected error_code: %v", fields["error_code"])
		}
	})
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("x: %w", ErrStoreUnavailable)) {
		t.Error("store unavailable should be retryable")
	}
	if !IsRetryable(ErrConcurrencyConflict) {
		t.Error("conflict should be retryable")
	}
	if IsRetryable(ErrInsufficientFunds) {
		t.Error("insufficient funds must not be retryable")
	}
}
