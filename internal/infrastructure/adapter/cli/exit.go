package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Process exit codes
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitUsage              = 2
	ExitNotAuthenticated   = 3
	ExitInvalidCredentials = 4
	ExitLockedOut          = 5
	ExitInvalidAmount      = 6
	ExitInsufficientFunds  = 7
	ExitAccountNotFound    = 8
	ExitTargetNotFound     = 9
	ExitInvalidTarget      = 10
	ExitStoreUnavailable   = 11
	ExitConflict           = 12
	ExitDuplicateAccount   = 13
	ExitInvalidInput       = 14
	ExitInterrupted        = 130
)

// UsageError reports a malformed command line
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	var usage *UsageError

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errs.ErrNotAuthenticated):
		return ExitNotAuthenticated
	case errors.Is(err, errs.ErrInvalidCredentials):
		return ExitInvalidCredentials
	case errors.Is(err, errs.ErrLockedOut):
		return ExitLockedOut
	case errors.Is(err, errs.ErrInvalidAmount):
		return ExitInvalidAmount
	case errors.Is(err, errs.ErrInsufficientFunds):
		return ExitInsufficientFunds
	case errors.Is(err, errs.ErrAccountNotFound):
		return ExitAccountNotFound
	case errors.Is(err, errs.ErrTargetNotFound):
		return ExitTargetNotFound
	case errors.Is(err, errs.ErrInvalidTarget):
		return ExitInvalidTarget
	case errors.Is(err, errs.ErrStoreUnavailable):
		return ExitStoreUnavailable
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return ExitConflict
	case errors.Is(err, errs.ErrDuplicateAccount):
		return ExitDuplicateAccount
	case errors.Is(err, errs.ErrInvalidPIN), errors.Is(err, errs.ErrInvalidName):
		return ExitInvalidInput
	case errors.As(err, &usage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// ReportError writes err for the user. Transient failures get a hint that
// running the command again is reasonable.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if errs.IsRetryable(err) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "This failure is temporary, try the command again.")
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &UsageError{Err: err}
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// unknownShorthand captures the token pflag rejected, e.g. "-5" in "unknown shorthand flag: '5' in -5"
var unknownShorthand = regexp.MustCompile(`unknown shorthand flag: .* in (-\S+)$`)

// flagError turns a negative amount, which pflag reads as a flag, into
// ErrInvalidAmount and every other flag problem into a usage error
func flagError(cmd *cobra.Command, err error) error {
	if cmd.Annotations[annotationAmount] != "" {
		if m := unknownShorthand.FindStringSubmatch(err.Error()); m != nil {
			if _, numErr := decimal.NewFromString(m[1]); numErr == nil {
				_, amountErr := entity.ParseAmount(m[1])
				return amountErr
			}
		}
	}
	return &UsageError{Err: fmt.Errorf("%w\nRun '%s --help' for usage", err, cmd.CommandPath())}
}
