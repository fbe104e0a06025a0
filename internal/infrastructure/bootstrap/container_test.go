package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/lockout"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: config.Test,
		Auth: config.AuthConfig{
			MaxFailedAttempts: 3,
			LockoutDuration:   15 * time.Minute,
			LockoutBackend:    config.LockoutBackendMemory,
			BcryptCost:        4,
		},
		Session: config.SessionConfig{
			Path:       filepath.Join(t.TempDir(), "session"),
			SigningKey: "0123456789abcdef",
		},
		Redis: config.RedisConfig{KeyPrefix: "atm:test:"},
	}
}

func TestContainer_SessionsWorkWithoutDatabase(t *testing.T) {
	c := NewWithLogger(testConfig(t), logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())
	ctx := context.Background()

	require.NoError(t, c.Sessions().Save(ctx, entity.Session{AccountID: 5, AccountName: "eve"}))
	sess, ok, err := c.Sessions().Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5), sess.AccountID)

	require.NoError(t, c.Sessions().Clear(ctx))
	assert.NoError(t, c.Close())
}

func TestContainer_LockoutStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		c := NewWithLogger(testConfig(t), logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())

		store, err := c.lockoutStore()
		require.NoError(t, err)
		assert.IsType(t, &lockout.MemoryStore{}, store)
	})

	t.Run("Redis", func(t *testing.T) {
		server := miniredis.RunT(t)
		cfg := testConfig(t)
		cfg.Auth.LockoutBackend = config.LockoutBackendRedis
		cfg.Redis.Addr = server.Addr()
		c := NewWithLogger(cfg, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())
		t.Cleanup(func() { _ = c.Close() })

		store, err := c.lockoutStore()
		require.NoError(t, err)
		assert.IsType(t, &lockout.RedisStore{}, store)

		failures, err := store.RecordFailure(context.Background(), "mallory")
		require.NoError(t, err)
		assert.Equal(t, 1, failures)
		assert.True(t, server.Exists("atm:test:mallory"))
	})

	t.Run("Database requires a connection", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.LockoutBackend = config.LockoutBackendDatabase
		c := NewWithLogger(cfg, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())

		_, err := c.lockoutStore()
		assert.Error(t, err)
	})

	t.Run("Unknown backend", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Auth.LockoutBackend = "carrier-pigeon"
		c := NewWithLogger(cfg, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider())

		_, err := c.lockoutStore()
		assert.ErrorContains(t, err, "carrier-pigeon")
	})
}

func TestRetryConfig(t *testing.T) {
	defaults := transaction.DefaultRetryConfig()

	got := retryConfig(config.TransactionConfig{MaxRetries: 5, RetryIntervalMs: 10, MaxRetryIntervalMs: 200})
	assert.Equal(t, 5, got.MaxRetries)
	assert.Equal(t, 10*coreport.Millisecond, got.RetryInterval)
	assert.Equal(t, 200*coreport.Millisecond, got.MaxInterval)
	assert.Equal(t, defaults.JitterFactor, got.JitterFactor)

	zero := retryConfig(config.TransactionConfig{})
	assert.Equal(t, 0, zero.MaxRetries)
	assert.Equal(t, defaults.RetryInterval, zero.RetryInterval)
	assert.Equal(t, defaults.MaxInterval, zero.MaxInterval)
}

func TestContainer_DatabaseConfigFollowsVerbose(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logger.Level = "warn"

	log := logger.NewNoopLogger()
	c := NewWithLogger(cfg, log, timeprovider.NewRealTimeProvider())
	assert.Equal(t, "warn", c.databaseConfig().LogLevel)

	log.SetLevel(coreport.LogLevelDebug)
	assert.Equal(t, "debug", c.databaseConfig().LogLevel)
}
