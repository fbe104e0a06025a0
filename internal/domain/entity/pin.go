package entity

import (
	"fmt"

	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
)

// PINLength is the exact number of digits in a PIN
const PINLength = 6

// ValidatePIN checks that a PIN is exactly 6 ASCII digits
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return fmt.Errorf("%w: got %d characters", errs.ErrInvalidPIN, len(pin))
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return errs.ErrInvalidPIN
		}
	}
	return nil
}
