package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	errs "github.com/amirhossein-jamali/atm-cli/internal/domain/error"
	"github.com/amirhossein-jamali/atm-cli/internal/testutil/memstore"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/core"
	"github.com/amirhossein-jamali/atm-cli/mocks/port/security"
)

type fixture struct {
	store    *memstore.Store
	sessions *memstore.SessionStore
	lockout  *security.MockLockoutStore
	hasher   *security.MockPinHasher
	useCase  *AuthUseCase
	alice    *entity.Account

	mu     sync.Mutex
	counts map[string]int
}

// newBareFixture leaves the lockout store without expectations
func newBareFixture(t *testing.T) *fixture {
	store := memstore.New()
	alice := store.Seed("alice", "100.00")

	hasher := new(security.MockPinHasher)
	hasher.On("Verify", "123456", alice.PinHash).Return(true, nil).Maybe()
	hasher.On("Verify", mock.Anything, alice.PinHash).Return(false, nil).Maybe()

	clock := new(core.MockTimeProvider)
	clock.On("Now").Return(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)).Maybe()

	logger := new(core.MockLogger)
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()

	sessions := memstore.NewSessionStore(nil)
	lockout := security.NewMockLockoutStore(t)

	return &fixture{
		store:    store,
		sessions: sessions,
		lockout:  lockout,
		hasher:   hasher,
		useCase:  NewAuthUseCase(store, hasher, lockout, sessions, clock, logger, 0),
		alice:    alice,
		counts:   map[string]int{},
	}
}

// newFixture backs the lockout store with a counter that never expires
func newFixture(t *testing.T) *fixture {
	f := newBareFixture(t)
	f.lockout.On("Failures", mock.Anything, mock.Anything).Return(func(_ context.Context, key string) (int, error) {
		return f.failures(key), nil
	}).Maybe()
	f.lockout.On("RecordFailure", mock.Anything, mock.Anything).Return(func(_ context.Context, key string) (int, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.counts[key]++
		return f.counts[key], nil
	}).Maybe()
	f.lockout.On("Reset", mock.Anything, mock.Anything).Return(func(_ context.Context, key string) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.counts, key)
		return nil
	}).Maybe()
	return f
}

func (f *fixture) failures(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[key]
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success opens a session and returns the view", func(t *testing.T) {
		f := newFixture(t)

		view, err := f.useCase.Login(ctx, "alice", "123456")
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, view.ID)
		assert.Equal(t, "100.00", view.FormattedBalance())

		sess, ok, err := f.sessions.Load(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, f.alice.ID, sess.AccountID)
		assert.Equal(t, "alice", sess.AccountName)
	})

	t.Run("Unknown name and wrong PIN look the same", func(t *testing.T) {
		f := newFixture(t)

		_, errUnknown := f.useCase.Login(ctx, "mallory", "123456")
		_, errWrong := f.useCase.Login(ctx, "alice", "654321")

		assert.ErrorIs(t, errUnknown, errs.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, errs.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("Fourth attempt after three failures is locked out", func(t *testing.T) {
		f := newFixture(t)

		for i := 0; i < 3; i++ {
			_, err := f.useCase.Login(ctx, "alice", "000000")
			assert.ErrorIs(t, err, errs.ErrInvalidCredentials, "attempt %d", i+1)
		}

		_, err := f.useCase.Login(ctx, "alice", "123456")
		assert.ErrorIs(t, err, errs.ErrLockedOut)

		_, ok, _ := f.sessions.Load(ctx)
		assert.False(t, ok)
		f.hasher.AssertNumberOfCalls(t, "Verify", 3)
	})

	t.Run("Malformed PIN counts as a failure", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.useCase.Login(ctx, "alice", "12ab")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		assert.Equal(t, 1, f.failures("alice"))
		f.hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Success resets the counter", func(t *testing.T) {
		f := newFixture(t)

		for i := 0; i < 2; i++ {
			_, _ = f.useCase.Login(ctx, "alice", "999999")
		}
		_, err := f.useCase.Login(ctx, "alice", "123456")
		require.NoError(t, err)
		assert.Zero(t, f.failures("alice"))

		for i := 0; i < 2; i++ {
			_, err = f.useCase.Login(ctx, "alice", "999999")
			assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		}
		_, err = f.useCase.Login(ctx, "alice", "123456")
		assert.NoError(t, err)
	})

	t.Run("Lockout store failure fails closed", func(t *testing.T) {
		f := newBareFixture(t)
		f.lockout.On("Failures", mock.Anything, "alice").Return(0, errors.New("connection refused")).Once()

		_, err := f.useCase.Login(ctx, "alice", "123456")
		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)

		_, ok, _ := f.sessions.Load(ctx)
		assert.False(t, ok)
		f.hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Unrecordable attempt is never checked", func(t *testing.T) {
		f := newBareFixture(t)
		f.lockout.On("Failures", mock.Anything, "alice").Return(0, nil).Once()
		f.lockout.On("RecordFailure", mock.Anything, "alice").Return(0, errors.New("connection refused")).Once()

		_, err := f.useCase.Login(ctx, "alice", "123456")
		assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
		f.hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Attempt past the limit is locked out without a PIN check", func(t *testing.T) {
		f := newBareFixture(t)
		f.lockout.On("Failures", mock.Anything, "alice").Return(2, nil).Once()
		f.lockout.On("RecordFailure", mock.Anything, "alice").Return(4, nil).Once()

		_, err := f.useCase.Login(ctx, "alice", "123456")
		assert.ErrorIs(t, err, errs.ErrLockedOut)
		f.hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Parallel wrong PINs get at most three checks", func(t *testing.T) {
		f := newFixture(t)
		f.hasher.ExpectedCalls = nil
		f.hasher.On("Verify", "123456", f.alice.PinHash).Return(true, nil).Maybe()
		f.hasher.On("Verify", mock.Anything, f.alice.PinHash).After(10*time.Millisecond).Return(false, nil).Maybe()

		const attempts = 8
		results := make(chan error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.useCase.Login(ctx, "alice", "000000")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var invalid, locked int
		for err := range results {
			switch {
			case errors.Is(err, errs.ErrInvalidCredentials):
				invalid++
			case errors.Is(err, errs.ErrLockedOut):
				locked++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, DefaultMaxFailedAttempts, invalid)
		assert.Equal(t, attempts-DefaultMaxFailedAttempts, locked)

		_, err := f.useCase.Login(ctx, "alice", "123456")
		assert.ErrorIs(t, err, errs.ErrLockedOut)
		f.hasher.AssertNumberOfCalls(t, "Verify", DefaultMaxFailedAttempts)
	})
}

func TestLogoutAndCurrentSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.useCase.CurrentSession(ctx)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = f.useCase.Login(ctx, " alice ", "123456")
	require.NoError(t, err)

	sess, err := f.useCase.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, sess.AccountID)

	require.NoError(t, f.useCase.Logout(ctx))
	require.NoError(t, f.useCase.Logout(ctx))

	_, err = f.useCase.CurrentSession(ctx)
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)
}
