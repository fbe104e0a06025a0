package transaction

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("atm/transaction")

// Service is the transaction engine. Every operation re-reads the
// session account under a row lock and commits balance and log rows together.
type Service struct {
	uow          persistence.UnitOfWork
	sessions     session.Store
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	retry        RetryConfig
	queryTimeout coreport.Duration
}

var _ usecase.TransactionUseCase = (*Service)(nil)

// NewTransactionService creates a new transaction engine
func NewTransactionService(
	uow persistence.UnitOfWork,
	sessions session.Store,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		sessions:     sessions,
		timeProvider: timeProvider,
		logger:       logger,
		retry:        DefaultRetryConfig(),
	}
}

// WithRetryConfig sets how concurrency conflicts are retried
func (s *Service) WithRetryConfig(cfg RetryConfig) *Service {
	s.retry = cfg
	return s
}

// WithQueryTimeout bounds each unit of work. Zero disables the bound.
func (s *Service) WithQueryTimeout(timeout coreport.Duration) *Service {
	s.queryTimeout = timeout
	return s
}

// currentSession loads the active session or fails with ErrNotAuthenticated
func (s *Service) currentSession(ctx context.Context) (entity.Session, error) {
	sess, ok, err := s.sessions.Load(ctx)
	if err != nil {
		return entity.Session{}, err
	}
	if !ok || sess.IsZero() {
		return entity.Session{}, errs.ErrNotAuthenticated
	}
	return sess, nil
}

// inUnitOfWork runs fn inside one database transaction. fn's writes are
// committed only if it returns nil; any error rolls everything back.
func (s *Service) inUnitOfWork(ctx context.Context, fn func(txCtx context.Context) error) (err error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = s.timeProvider.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return classifyContextError(ctx, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
			fields := map[string]any{
				"error":        rbErr.Error(),
				"operation_id": coreport.OperationID(ctx),
			}
			if err != nil {
				fields["cause"] = err.Error()
			}
			s.logger.Error("Failed to roll back transaction", fields)
		}
	}()

	if err = fn(txCtx); err != nil {
		return classifyContextError(ctx, err)
	}

	if err = s.uow.Commit(txCtx); err != nil {
		return classifyContextError(ctx, err)
	}
	committed = true
	return nil
}

// classifyContextError keeps a caller cancellation recognisable as
// context.Canceled and turns a blown deadline into ErrStoreUnavailable
func classifyContextError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: %v", context.Canceled, err)
	case errors.Is(err, errs.ErrStoreUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	default:
		return err
	}
}

// lockAccounts locks ids in ascending order and returns them keyed by id
func lockAccounts(ctx context.Context, repo persistence.AccountRepository, ids ...uint64) (map[uint64]*entity.Account, error) {
	return repo.LockForUpdate(ctx, sortedIDs(ids...)...)
}

func sortedIDs(ids ...uint64) []uint64 {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

// fail records err on the span and logs it with its structured fields
func (s *Service) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := map[string]any{
		"operation":    operation,
		"error":        err.Error(),
		"error_code":   errs.ErrorCode(err),
		"operation_id": coreport.OperationID(ctx),
	}
	var opErr *errs.OperationError
	if errors.As(err, &opErr) {
		for k, v := range opErr.LogFields() {
			fields[k] = v
		}
	}

	switch {
	case errors.Is(err, errs.ErrStoreUnavailable), errors.Is(err, errs.ErrConcurrencyConflict), errs.ErrorCode(err) == errs.CodeInternal:
		s.logger.Error("Transaction failed", fields)
	default:
		s.logger.Warn("Transaction rejected", fields)
	}
	return err
}

func spanAttributes(accountID uint64, amount string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("atm.account_id", int64(accountID)),
		attribute.String("atm.amount", amount),
	}
}
