package transaction

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// Deposit adds amount to the session account and records a deposit row
func (s *Service) Deposit(ctx context.Context, amount string) (*entity.Transaction, error) {
	ctx, span := tracer.Start(ctx, "transaction.Deposit")
	defer span.End()

	sess, err := s.currentSession(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "deposit", err)
	}
	value, err := validateAmount(amount)
	if err != nil {
		return nil, s.fail(ctx, span, "deposit", err)
	}
	span.SetAttributes(spanAttributes(sess.AccountID, entity.FormatAmount(value))...)

	var row *entity.Transaction
	var balance decimal.Decimal
	err = s.retryOnConflict(ctx, "deposit", func(ctx context.Context) error {
		return s.inUnitOfWork(ctx, func(txCtx context.Context) error {
			var err error
			row, balance, err = s.applySingle(txCtx, sess.AccountID, entity.TypeDeposit, value)
			return err
		})
	})
	if err != nil {
		opErr := errs.NewOperationError("deposit", sess.AccountID, 0, entity.FormatAmount(value), err)
		return nil, s.fail(ctx, span, "deposit", opErr)
	}

	s.logger.Info("Deposit completed", map[string]any{
		"account_id":     sess.AccountID,
		"transaction_id": row.ID,
		"amount":         row.FormattedAmount(),
		"new_balance":    entity.FormatAmount(balance),
		"operation_id":   coreport.OperationID(ctx),
	})
	return row, nil
}

// applySingle performs the read-modify-write for a deposit or withdraw
// inside the caller's unit of work and returns the inserted row
func (s *Service) applySingle(
	txCtx context.Context,
	accountID uint64,
	txType entity.TransactionType,
	amount decimal.Decimal,
) (*entity.Transaction, decimal.Decimal, error) {
	accounts := s.uow.GetAccountRepository(txCtx)

	locked, err := lockAccounts(txCtx, accounts, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	account, ok := locked[accountID]
	if !ok {
		return nil, decimal.Zero, errs.ErrAccountNotFound
	}

	var newBalance decimal.Decimal
	if txType.IsCredit() {
		newBalance = account.CreditedBalance(amount)
	} else {
		newBalance, err = account.DebitedBalance(amount)
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	row, err := entity.NewTransaction(accountID, txType, amount, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if err := accounts.UpdateBalance(txCtx, accountID, account.Version, newBalance); err != nil {
		return nil, decimal.Zero, fmt.Errorf("update balance of account %d: %w", accountID, err)
	}
	if err := s.uow.GetTransactionRepository(txCtx).Create(txCtx, row); err != nil {
		return nil, decimal.Zero, fmt.Errorf("record %s: %w", txType, err)
	}
	return row, newBalance, nil
}
