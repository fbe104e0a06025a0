package transaction

import (
	"fmt"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/shopspring/decimal"
)

// validateAmount parses raw amount input before anything is read from the store
func validateAmount(amount string) (decimal.Decimal, error) {
	value, err := entity.ParseAmount(amount)
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// validateTarget rejects transfers with no counterparty or to the sender itself
func validateTarget(senderID, targetID uint64) error {
	if targetID == 0 {
		return fmt.Errorf("%w: account id 0", errs.ErrTargetNotFound)
	}
	if targetID == senderID {
		return fmt.Errorf("%w: cannot transfer to your own account", errs.ErrInvalidTarget)
	}
	return nil
}
