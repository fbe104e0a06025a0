package transaction

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Transfer moves amount from the session account to targetID.
// Both rows are locked in ascending id order, then written as
// sender balance, transfer_out, receiver balance, transfer_in.
func (s *Service) Transfer(ctx context.Context, amount string, targetID uint64) (*entity.TransferResult, error) {
	ctx, span := tracer.Start(ctx, "transaction.Transfer")
	defer span.End()

	sess, err := s.currentSession(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "transfer", err)
	}
	value, err := validateAmount(amount)
	if err != nil {
		return nil, s.fail(ctx, span, "transfer", err)
	}
	if err := validateTarget(sess.AccountID, targetID); err != nil {
		return nil, s.fail(ctx, span, "transfer", err)
	}
	span.SetAttributes(spanAttributes(sess.AccountID, entity.FormatAmount(value))...)
	span.SetAttributes(attribute.Int64("atm.target_id", int64(targetID)))

	var result *entity.TransferResult
	err = s.retryOnConflict(ctx, "transfer", func(ctx context.Context) error {
		return s.inUnitOfWork(ctx, func(txCtx context.Context) error {
			var err error
			result, err = s.applyTransfer(txCtx, sess.AccountID, targetID, value)
			return err
		})
	})
	if err != nil {
		opErr := errs.NewOperationError("transfer", sess.AccountID, targetID, entity.FormatAmount(value), err)
		return nil, s.fail(ctx, span, "transfer", opErr)
	}

	s.logger.Info("Transfer completed", map[string]any{
		"account_id":   sess.AccountID,
		"target_id":    targetID,
		"amount":       entity.FormatAmount(value),
		"outgoing_id":  result.Outgoing.ID,
		"incoming_id":  result.Incoming.ID,
		"operation_id": coreport.OperationID(ctx),
	})
	return result, nil
}

func (s *Service) applyTransfer(
	txCtx context.Context,
	senderID, receiverID uint64,
	amount decimal.Decimal,
) (*entity.TransferResult, error) {
	accounts := s.uow.GetAccountRepository(txCtx)
	transactions := s.uow.GetTransactionRepository(txCtx)

	locked, err := lockAccounts(txCtx, accounts, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	sender, ok := locked[senderID]
	if !ok {
		return nil, errs.ErrAccountNotFound
	}
	receiver, ok := locked[receiverID]
	if !ok {
		return nil, fmt.Errorf("%w: account %d", errs.ErrTargetNotFound, receiverID)
	}

	senderBalance, err := sender.DebitedBalance(amount)
	if err != nil {
		return nil, err
	}
	receiverBalance := receiver.CreditedBalance(amount)

	outgoing, err := entity.NewTransaction(senderID, entity.TypeTransferOut, amount, &receiverID)
	if err != nil {
		return nil, err
	}
	incoming, err := entity.NewTransaction(receiverID, entity.TypeTransferIn, amount, &senderID)
	if err != nil {
		return nil, err
	}

	if err := accounts.UpdateBalance(txCtx, senderID, sender.Version, senderBalance); err != nil {
		return nil, fmt.Errorf("update balance of account %d: %w", senderID, err)
	}
	if err := transactions.Create(txCtx, outgoing); err != nil {
		return nil, fmt.Errorf("record %s: %w", entity.TypeTransferOut, err)
	}
	if err := accounts.UpdateBalance(txCtx, receiverID, receiver.Version, receiverBalance); err != nil {
		return nil, fmt.Errorf("update balance of account %d: %w", receiverID, err)
	}
	if err := transactions.Create(txCtx, incoming); err != nil {
		return nil, fmt.Errorf("record %s: %w", entity.TypeTransferIn, err)
	}

	return &entity.TransferResult{
		Outgoing:     outgoing,
		Incoming:     incoming,
		SenderName:   sender.Name,
		ReceiverName: receiver.Name,
	}, nil
}
