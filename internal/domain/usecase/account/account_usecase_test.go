package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/core"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/persistence"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/security"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/session"
)

type mocks struct {
	uow      *persistence.MockUnitOfWork
	accounts *persistence.MockAccountRepository
	hasher   *security.MockPinHasher
	sessions *session.MockStore
	clock    *core.MockTimeProvider
	logger   *core.MockLogger
}

func newMocks() *mocks {
	m := &mocks{
		uow:      new(persistence.MockUnitOfWork),
		accounts: new(persistence.MockAccountRepository),
		hasher:   new(security.MockPinHasher),
		sessions: new(session.MockStore),
		clock:    new(core.MockTimeProvider),
		logger:   new(core.MockLogger),
	}
	m.uow.On("GetAccountRepository", mock.Anything).Return(m.accounts).Maybe()
	m.logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Info", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	m.logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return m
}

func (m *mocks) useCase() *AccountUseCase {
	return NewAccountUseCase(m.uow, m.hasher, m.sessions, m.clock, m.logger).(*AccountUseCase)
}

func TestAccountUseCase_Register(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should create account with zero balance", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		m := newMocks()
		m.clock.On("Now").Return(fixedTime)
		m.accounts.On("GetByName", ctx, "alice").Return(nil, errs.ErrAccountNotFound)
		m.hasher.On("Hash", "123456").Return("$2a$hash", nil)
		m.accounts.On("Create", ctx, mock.MatchedBy(func(a *entity.Account) bool {
			return a.Name == "alice" && a.PinHash == "$2a$hash" && a.Balance.IsZero()
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Account).ID = 7
		}).Return(nil)

		// Act
		view, err := m.useCase().Register(ctx, "  alice ", "123456")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(7), view.ID)
		assert.Equal(t, "alice", view.Name)
		assert.Equal(t, "0.00", view.FormattedBalance())
		m.accounts.AssertExpectations(t)
		m.hasher.AssertExpectations(t)
	})

	t.Run("should reject a taken name", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		m := newMocks()
		m.accounts.On("GetByName", ctx, "alice").Return(&entity.Account{ID: 1, Name: "alice"}, nil)

		// Act
		_, err := m.useCase().Register(ctx, "alice", "123456")

		// Assert
		assert.ErrorIs(t, err, errs.ErrDuplicateAccount)
		m.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	})

	t.Run("should surface a unique violation lost to a race", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		m := newMocks()
		m.clock.On("Now").Return(fixedTime)
		m.accounts.On("GetByName", ctx, "alice").Return(nil, errs.ErrAccountNotFound)
		m.hasher.On("Hash", "123456").Return("$2a$hash", nil)
		m.accounts.On("Create", ctx, mock.Anything).Return(errs.ErrDuplicateAccount)

		// Act
		_, err := m.useCase().Register(ctx, "alice", "123456")

		// Assert
		assert.ErrorIs(t, err, errs.ErrDuplicateAccount)
	})

	t.Run("should validate input before touching the store", func(t *testing.T) {
		testCases := []struct {
			name, pin string
			expected  error
		}{
			{"", "123456", errs.ErrInvalidName},
			{"alice", "12345", errs.ErrInvalidPIN},
			{"alice", "abcdef", errs.ErrInvalidPIN},
		}

		for _, tc := range testCases {
			m := newMocks()
			_, err := m.useCase().Register(context.Background(), tc.name, tc.pin)
			assert.ErrorIs(t, err, tc.expected)
			m.accounts.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
		}
	})

	t.Run("should report hashing failures as internal", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		m := newMocks()
		m.accounts.On("GetByName", ctx, "alice").Return(nil, errs.ErrAccountNotFound)
		m.hasher.On("Hash", "123456").Return("", errors.New("entropy exhausted"))

		// Act
		_, err := m.useCase().Register(ctx, "alice", "123456")

		// Assert
		assert.ErrorIs(t, err, errs.ErrInternal)
	})

	t.Run("should pass through store outages", func(t *testing.T) {
		ctx := context.Background()
		m := newMocks()
		m.accounts.On("GetByName", ctx, "alice").Return(nil, errs.ErrStoreUnavailable)

		_, err := m.useCase().Register(ctx, "alice", "123456")

		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
	})
}

func TestAccountUseCase_CheckBalance(t *testing.T) {
	t.Run("should return the session account view", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		m := newMocks()
		m.sessions.On("Load", ctx).Return(entity.Session{AccountID: 3, AccountName: "carol"}, true, nil)
		m.accounts.On("GetByID", ctx, uint64(3)).Return(&entity.Account{
			ID:      3,
			Name:    "carol",
			Balance: decimal.RequireFromString("42.5"),
		}, nil)

		// Act
		view, err := m.useCase().CheckBalance(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "42.50", view.FormattedBalance())
		assert.Equal(t, "carol", view.Name)
	})

	t.Run("should fail without a session", func(t *testing.T) {
		ctx := context.Background()
		m := newMocks()
		m.sessions.On("Load", ctx).Return(entity.Session{}, false, nil)

		_, err := m.useCase().CheckBalance(ctx)

		assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
		m.accounts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("should report a vanished account", func(t *testing.T) {
		ctx := context.Background()
		m := newMocks()
		m.sessions.On("Load", ctx).Return(entity.Session{AccountID: 9}, true, nil)
		m.accounts.On("GetByID", ctx, uint64(9)).Return(nil, errs.ErrAccountNotFound)

		_, err := m.useCase().CheckBalance(ctx)

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})
}
