package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/session"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/logger"
	mocksession "github.com/amirhossein-jamali/atm-cli/mocks/port/session"
	mockusecase "github.com/amirhossein-jamali/atm-cli/mocks/port/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeServices struct {
	accounts     *mockusecase.MockAccountUseCase
	auth         *mockusecase.MockAuthUseCase
	transactions *mockusecase.MockTransactionUseCase
	sessions     *mocksession.MockStore
	migrator     *fakeMigrator
	runner       Runner
	buildErr     error
	logger       coreport.Logger
}

func newFakeServices(t *testing.T) *fakeServices {
	return &fakeServices{
		accounts:     mockusecase.NewMockAccountUseCase(t),
		auth:         mockusecase.NewMockAuthUseCase(t),
		transactions: mockusecase.NewMockTransactionUseCase(t),
		sessions:     mocksession.NewMockStore(t),
		migrator:     &fakeMigrator{},
		logger:       logger.NewNoopLogger(),
	}
}

func (s *fakeServices) Accounts(context.Context) (usecase.AccountUseCase, error) {
	return s.accounts, s.buildErr
}

func (s *fakeServices) Auth(context.Context) (usecase.AuthUseCase, error) {
	return s.auth, s.buildErr
}

func (s *fakeServices) Transactions(context.Context) (usecase.TransactionUseCase, error) {
	return s.transactions, s.buildErr
}

func (s *fakeServices) Sessions() session.Store { return s.sessions }

func (s *fakeServices) Migrator(context.Context) (Migrator, error) { return s.migrator, s.buildErr }

func (s *fakeServices) ProbeServer(context.Context) (Runner, error) { return s.runner, s.buildErr }

func (s *fakeServices) Logger() coreport.Logger { return s.logger }

type fakeMigrator struct {
	before, after string
	migrated      bool
	err           error
}

func (m *fakeMigrator) MigrateAll(context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.migrated = true
	return m.before, nil
}

func (m *fakeMigrator) GetCurrentVersion(context.Context) (string, error) {
	if m.migrated {
		return m.after, nil
	}
	return m.before, nil
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

type scriptedPrompter struct {
	answers []string
	prompts []string
}

func (p *scriptedPrompter) ReadSecret(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return "", errors.New("no more input")
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func run(t *testing.T, services Services, prompter Prompter, args ...string) (string, error) {
	t.Helper()
	if prompter == nil {
		prompter = &scriptedPrompter{}
	}
	root := NewRootCommand(services, prompter)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegisterCommand(t *testing.T) {
	t.Run("Matching PINs", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.accounts.On("Register", mock.Anything, "alice", "123456").
			Return(entity.AccountView{ID: 1, Name: "alice", Balance: decimal.Zero}, nil).Once()
		prompter := &scriptedPrompter{answers: []string{"123456", "123456"}}

		out, err := run(t, svc, prompter, "register", "--name", "alice")

		require.NoError(t, err)
		assert.Len(t, prompter.prompts, 2)
		assert.Contains(t, out, `Account "alice" registered`)
		assert.Contains(t, out, "0.00")
	})

	t.Run("Mismatched PINs never reach the store", func(t *testing.T) {
		svc := newFakeServices(t)
		prompter := &scriptedPrompter{answers: []string{"123456", "654321"}}

		_, err := run(t, svc, prompter, "register", "--name", "alice")

		assert.ErrorIs(t, err, errs.ErrInvalidPIN)
		assert.Equal(t, ExitInvalidInput, ExitCode(err))
	})

	t.Run("Duplicate name", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.accounts.On("Register", mock.Anything, "alice", "123456").
			Return(entity.AccountView{}, errs.ErrDuplicateAccount).Once()
		prompter := &scriptedPrompter{answers: []string{"123456", "123456"}}

		_, err := run(t, svc, prompter, "register", "-n", "alice")

		assert.Equal(t, ExitDuplicateAccount, ExitCode(err))
	})
}

func TestLoginCommand(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.auth.On("Login", mock.Anything, "bob", "000000").
			Return(entity.AccountView{ID: 2, Name: "bob"}, nil).Once()

		out, err := run(t, svc, &scriptedPrompter{answers: []string{"000000"}}, "login", "--name", "bob")

		require.NoError(t, err)
		assert.Equal(t, "Logged in as bob (account 2)\n", out)
	})

	t.Run("Locked out", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.auth.On("Login", mock.Anything, "bob", "000000").
			Return(entity.AccountView{}, errs.ErrLockedOut).Once()

		_, err := run(t, svc, &scriptedPrompter{answers: []string{"000000"}}, "login", "--name", "bob")

		assert.Equal(t, ExitLockedOut, ExitCode(err))
	})

	t.Run("Store cannot be opened", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.buildErr = errs.ErrStoreUnavailable

		_, err := run(t, svc, &scriptedPrompter{answers: []string{"000000"}}, "login", "--name", "bob")

		assert.Equal(t, ExitStoreUnavailable, ExitCode(err))
	})
}

func TestLogoutCommand(t *testing.T) {
	svc := newFakeServices(t)
	svc.sessions.On("Clear", mock.Anything).Return(nil).Once()

	out, err := run(t, svc, nil, "logout")

	require.NoError(t, err)
	assert.Equal(t, "Logged out\n", out)
}

func TestCheckBalanceCommand(t *testing.T) {
	t.Run("Prints the balance", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.accounts.On("CheckBalance", mock.Anything).
			Return(entity.AccountView{ID: 1, Name: "alice", Balance: decimal.RequireFromString("60")}, nil).Once()

		out, err := run(t, svc, nil, "check-balance")

		require.NoError(t, err)
		assert.Contains(t, out, "ACCOUNT")
		assert.Contains(t, out, "alice")
		assert.Contains(t, out, "60.00")
	})

	t.Run("No session", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.accounts.On("CheckBalance", mock.Anything).Return(entity.AccountView{}, errs.ErrNotAuthenticated).Once()

		_, err := run(t, svc, nil, "balance")

		assert.Equal(t, ExitNotAuthenticated, ExitCode(err))
	})
}

func TestMoneyCommands(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	target := uint64(2)
	sender := uint64(1)

	t.Run("Deposit", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.transactions.On("Deposit", mock.Anything, "100").Return(&entity.Transaction{
			ID: 1, AccountID: 1, Type: entity.TypeDeposit, Amount: decimal.NewFromInt(100), CreatedAt: created,
		}, nil).Once()

		out, err := run(t, svc, nil, "deposit", "100")

		require.NoError(t, err)
		assert.Contains(t, out, "Deposited 100.00")
		assert.Contains(t, out, "2024-03-01T10:00:00Z")
	})

	t.Run("Withdraw more than the balance", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.transactions.On("Withdraw", mock.Anything, "150").
			Return(nil, errs.NewInsufficientFundsError(1, "150.00", "100.00")).Once()

		_, err := run(t, svc, nil, "withdraw", "150")

		assert.Equal(t, ExitInsufficientFunds, ExitCode(err))
	})

	t.Run("Transfer", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.transactions.On("Transfer", mock.Anything, "60", target).Return(&entity.TransferResult{
			Outgoing:     &entity.Transaction{ID: 3, AccountID: 1, Type: entity.TypeTransferOut, Amount: decimal.NewFromInt(60), TargetID: &target},
			Incoming:     &entity.Transaction{ID: 4, AccountID: 2, Type: entity.TypeTransferIn, Amount: decimal.NewFromInt(60), TargetID: &sender},
			SenderName:   "alice",
			ReceiverName: "bob",
		}, nil).Once()

		out, err := run(t, svc, nil, "transfer", "60", "--to", "2")

		require.NoError(t, err)
		assert.Contains(t, out, "Transferred 60.00 to bob (account 2)")
		assert.Contains(t, out, "transfer_out")
		assert.Contains(t, out, "transfer_in")
	})

	t.Run("Transfer to an unknown account", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.transactions.On("Transfer", mock.Anything, "5", uint64(99)).Return(nil, errs.ErrTargetNotFound).Once()

		_, err := run(t, svc, nil, "transfer", "5", "--to", "99")

		assert.Equal(t, ExitTargetNotFound, ExitCode(err))
	})

	t.Run("Negative amount is an invalid amount, not a flag", func(t *testing.T) {
		svc := newFakeServices(t)

		_, err := run(t, svc, nil, "withdraw", "-5")

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		assert.Equal(t, ExitInvalidAmount, ExitCode(err))
	})

	t.Run("Missing amount", func(t *testing.T) {
		svc := newFakeServices(t)

		_, err := run(t, svc, nil, "deposit")

		assert.Equal(t, ExitUsage, ExitCode(err))
	})

	t.Run("Unknown flag", func(t *testing.T) {
		svc := newFakeServices(t)

		_, err := run(t, svc, nil, "deposit", "5", "--bogus")

		assert.Equal(t, ExitUsage, ExitCode(err))
	})
}

func TestMigrateCommand(t *testing.T) {
	t.Run("Fresh database", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.migrator = &fakeMigrator{after: "1.0.0"}

		out, err := run(t, svc, nil, "migrate")

		require.NoError(t, err)
		assert.Equal(t, "Schema migrated from none to 1.0.0\n", out)
	})

	t.Run("Already current", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.migrator = &fakeMigrator{before: "1.0.0", after: "1.0.0"}

		out, err := run(t, svc, nil, "migrate")

		require.NoError(t, err)
		assert.Equal(t, "Schema already at version 1.0.0\n", out)
	})

	t.Run("Status only", func(t *testing.T) {
		svc := newFakeServices(t)
		svc.migrator = &fakeMigrator{before: "1.0.0", after: "2.0.0"}

		out, err := run(t, svc, nil, "migrate", "--status")

		require.NoError(t, err)
		assert.Equal(t, "Schema version: 1.0.0\n", out)
		assert.False(t, svc.migrator.migrated)
	})
}

func TestServeCommand(t *testing.T) {
	svc := newFakeServices(t)
	called := false
	svc.runner = runnerFunc(func(ctx context.Context) error {
		called = true
		return nil
	})

	_, err := run(t, svc, nil, "serve")

	require.NoError(t, err)
	assert.True(t, called)
}

func TestVerboseFlagRaisesLogLevel(t *testing.T) {
	svc := newFakeServices(t)
	svc.sessions.On("Clear", mock.Anything).Return(nil).Once()

	_, err := run(t, svc, nil, "--verbose", "logout")

	require.NoError(t, err)
	assert.Equal(t, coreport.LogLevelDebug, svc.logger.GetLevel())
}
