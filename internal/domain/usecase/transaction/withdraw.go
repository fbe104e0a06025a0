package transaction

import (
	"context"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// Withdraw removes amount from the session account and records a withdraw row.
// Nothing is written when the balance does not cover the amount.
func (s *Service) Withdraw(ctx context.Context, amount string) (*entity.Transaction, error) {
	ctx, span := tracer.Start(ctx, "transaction.Withdraw")
	defer span.End()

	sess, err := s.currentSession(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "withdraw", err)
	}
	value, err := validateAmount(amount)
	if err != nil {
		return nil, s.fail(ctx, span, "withdraw", err)
	}
	span.SetAttributes(spanAttributes(sess.AccountID, entity.FormatAmount(value))...)

	var row *entity.Transaction
	var balance decimal.Decimal
	err = s.retryOnConflict(ctx, "withdraw", func(ctx context.Context) error {
		return s.inUnitOfWork(ctx, func(txCtx context.Context) error {
			var err error
			row, balance, err = s.applySingle(txCtx, sess.AccountID, entity.TypeWithdraw, value)
			return err
		})
	})
	if err != nil {
		opErr := errs.NewOperationError("withdraw", sess.AccountID, 0, entity.FormatAmount(value), err)
		return nil, s.fail(ctx, span, "withdraw", opErr)
	}

	s.logger.Info("Withdrawal completed", map[string]any{
		"account_id":     sess.AccountID,
		"transaction_id": row.ID,
		"amount":         row.FormattedAmount(),
		"new_balance":    entity.FormatAmount(balance),
		"operation_id":   coreport.OperationID(ctx),
	})
	return row, nil
}
