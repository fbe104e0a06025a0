// Package memstore is an in-memory persistence.UnitOfWork for tests.
// A transaction holds the store's lock from Begin until Commit or Rollback,
// so concurrent units of work are fully serialized like rows under FOR UPDATE.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/persistence"
	"github.com/shopspring/decimal"
)

// Operation names accepted by InjectFault
const (
	OpBegin             = "begin"
	OpCommit            = "commit"
	OpLockForUpdate     = "accounts.lock"
	OpUpdateBalance     = "accounts.update_balance"
	OpCreateAccount     = "accounts.create"
	OpCreateTransaction = "transactions.create"
)

type txKey struct{}

type state struct {
	accounts      map[uint64]*entity.Account
	transactions  []*entity.Transaction
	nextAccountID uint64
	nextTxID      uint64
}

func (s *state) clone() *state {
	c := &state{
		accounts:      make(map[uint64]*entity.Account, len(s.accounts)),
		transactions:  slices.Clone(s.transactions),
		nextAccountID: s.nextAccountID,
		nextTxID:      s.nextTxID,
	}
	for id, a := range s.accounts {
		copied := *a
		c.accounts[id] = &copied
	}
	return c
}

type tx struct {
	state *state
	done  bool
}

// Store is the in-memory database
type Store struct {
	mu    sync.Mutex // held for the lifetime of a transaction
	state *state

	faultsMu sync.Mutex
	faults   map[string][]error
	calls    map[string]int
}

var _ persistence.UnitOfWork = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		state: &state{
			accounts:      make(map[uint64]*entity.Account),
			nextAccountID: 1,
			nextTxID:      1,
		},
		faults: make(map[string][]error),
		calls:  make(map[string]int),
	}
}

// InjectFault makes the next call of op fail with err. Faults queue up in order.
func (s *Store) InjectFault(op string, err error) {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	s.faults[op] = append(s.faults[op], err)
}

// Calls returns how many times op was invoked
func (s *Store) Calls(op string) int {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	return s.calls[op]
}

func (s *Store) hit(op string) error {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()
	s.calls[op]++
	queued := s.faults[op]
	if len(queued) == 0 {
		return nil
	}
	s.faults[op] = queued[1:]
	return queued[0]
}

// Seed inserts an account with the given balance outside of any transaction
func (s *Store) Seed(name, balance string) *entity.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	account := &entity.Account{
		ID:        s.state.nextAccountID,
		Name:      name,
		PinHash:   "hash:" + name,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.nextAccountID++
	s.state.accounts[account.ID] = account

	copied := *account
	return &copied
}

// Account returns a copy of the committed account, or nil
func (s *Store) Account(id uint64) *entity.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.accounts[id]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}

// Transactions returns committed transaction rows in insertion order
func (s *Store) Transactions() []*entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.transactions)
}

// TotalBalance sums every committed balance
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, a := range s.state.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Begin starts a transaction on a private copy of the committed state
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if err := s.hit(OpBegin); err != nil {
		return ctx, err
	}
	if err := ctx.Err(); err != nil {
		return ctx, err
	}
	s.mu.Lock()
	return context.WithValue(ctx, txKey{}, &tx{state: s.state.clone()}), nil
}

// Commit publishes the transaction's copy as the committed state
func (s *Store) Commit(ctx context.Context) error {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.done {
		return errors.New("memstore: no active transaction")
	}
	if err := s.hit(OpCommit); err != nil {
		return err
	}
	s.state = t.state
	t.done = true
	s.mu.Unlock()
	return nil
}

// Rollback discards the transaction's copy. It is a no-op after Commit.
func (s *Store) Rollback(ctx context.Context) error {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.done {
		return nil
	}
	t.done = true
	s.mu.Unlock()
	return nil
}

// GetAccountRepository returns an account repository bound to ctx's transaction
func (s *Store) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &accountRepo{store: s, tx: txFrom(ctx)}
}

// GetTransactionRepository returns a transaction repository bound to ctx's transaction
func (s *Store) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return &transactionRepo{store: s, tx: txFrom(ctx)}
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// view runs fn against the transaction's state, or the committed state under the lock
func (s *Store) view(t *tx, fn func(st *state) error) error {
	if t != nil {
		if t.done {
			return errors.New("memstore: transaction already finished")
		}
		return fn(t.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

type accountRepo struct {
	store *Store
	tx    *tx
}

func (r *accountRepo) Create(ctx context.Context, account *entity.Account) error {
	if err := r.store.hit(OpCreateAccount); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Name == account.Name {
				return fmt.Errorf("%w: %s", errs.ErrDuplicateAccount, account.Name)
			}
		}
		account.ID = st.nextAccountID
		st.nextAccountID++
		copied := *account
		st.accounts[account.ID] = &copied
		return nil
	})
}

func (r *accountRepo) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var found *entity.Account
	err := r.store.view(r.tx, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok {
			return errs.ErrAccountNotFound
		}
		copied := *a
		found = &copied
		return nil
	})
	return found, err
}

func (r *accountRepo) GetByName(ctx context.Context, name string) (*entity.Account, error) {
	var found *entity.Account
	err := r.store.view(r.tx, func(st *state) error {
		for _, a := range st.accounts {
			if a.Name == name {
				copied := *a
				found = &copied
				return nil
			}
		}
		return errs.ErrAccountNotFound
	})
	return found, err
}

func (r *accountRepo) LockForUpdate(ctx context.Context, ids ...uint64) (map[uint64]*entity.Account, error) {
	if r.tx == nil {
		return nil, errors.New("memstore: LockForUpdate outside a transaction")
	}
	if err := r.store.hit(OpLockForUpdate); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locked := make(map[uint64]*entity.Account, len(ids))
	err := r.store.view(r.tx, func(st *state) error {
		for _, id := range ids {
			if a, ok := st.accounts[id]; ok {
				copied := *a
				locked[id] = &copied
			}
		}
		return nil
	})
	return locked, err
}

func (r *accountRepo) UpdateBalance(ctx context.Context, id uint64, expectedVersion uint64, balance decimal.Decimal) error {
	if err := r.store.hit(OpUpdateBalance); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		a, ok := st.accounts[id]
		if !ok || a.Version != expectedVersion {
			return errs.ErrConcurrencyConflict
		}
		if balance.IsNegative() {
			return errs.ErrInsufficientFunds
		}
		a.Balance = balance
		a.Version++
		a.UpdatedAt = time.Now()
		return nil
	})
}

type transactionRepo struct {
	store *Store
	tx    *tx
}

func (r *transactionRepo) Create(ctx context.Context, transaction *entity.Transaction) error {
	if err := r.store.hit(OpCreateTransaction); err != nil {
		return err
	}
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.accounts[transaction.AccountID]; !ok {
			return errs.ErrAccountNotFound
		}
		if transaction.TargetID != nil {
			if _, ok := st.accounts[*transaction.TargetID]; !ok {
				return errs.ErrTargetNotFound
			}
		}
		transaction.ID = st.nextTxID
		st.nextTxID++
		transaction.CreatedAt = time.Now()
		copied := *transaction
		st.transactions = append(st.transactions, &copied)
		return nil
	})
}
