package entity

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// MaxAmount caps a single operation so balances stay inside NUMERIC(18,2)
var MaxAmount = decimal.New(1, 12)

// ParseAmount validates a user supplied amount and returns it as a decimal.
// The amount must be a finite, strictly positive number with at most two decimal places.
func ParseAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", errs.ErrInvalidAmount, amount)
	}

	return value, ValidateAmount(value)
}

// ValidateAmount checks an already parsed amount
func ValidateAmount(value decimal.Decimal) error {
	if !value.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", errs.ErrInvalidAmount)
	}
	if !value.Equal(value.Truncate(MaxDecimalPlaces)) {
		return fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}
	if value.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: must not exceed %s", errs.ErrInvalidAmount, FormatAmount(MaxAmount))
	}
	return nil
}

// FormatAmount renders a money value with exactly 2 decimal places.
// Example: 10.1 becomes "10.10", 10 becomes "10.00"
func FormatAmount(value decimal.Decimal) string {
	return value.StringFixed(MaxDecimalPlaces)
}
