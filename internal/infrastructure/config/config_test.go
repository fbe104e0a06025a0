package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigDir(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	oldPaths, oldDotEnv := ConfigPaths, DotEnvPaths
	ConfigPaths = []string{dir}
	DotEnvPaths = []string{filepath.Join(dir, ".env")}
	t.Cleanup(func() {
		ConfigPaths, DotEnvPaths = oldPaths, oldDotEnv
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	withConfigDir(t, nil)
	t.Setenv("ATM_ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, LockoutBackendDatabase, cfg.Auth.LockoutBackend)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "stderr", cfg.Logger.Output)
	assert.True(t, filepath.IsAbs(cfg.Session.Path), cfg.Session.Path)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	withConfigDir(t, map[string]string{
		"test.yaml": `
database:
  host: db.internal
  username: atm
  database: atm
  queryTimeout: 2
auth:
  lockoutBackend: redis
  lockoutDuration: 0
session:
  path: /tmp/atm-session
  signingKey: file-key-0123456789
`,
		".env": "ATM_DB_PASSWORD=from-dotenv\n",
	})
	t.Setenv("ATM_ENV", "TEST")
	t.Setenv("ATM_DB_HOST", "override.internal")
	t.Setenv("ATM_TRANSACTION_MAX_RETRIES", "0")
	t.Cleanup(func() { _ = os.Unsetenv("ATM_DB_PASSWORD") })

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "from-dotenv", cfg.Database.Password)
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, LockoutBackendRedis, cfg.Auth.LockoutBackend)
	assert.Zero(t, cfg.Auth.LockoutDuration)
	assert.Zero(t, cfg.Transaction.MaxRetries)
	assert.Equal(t, "/tmp/atm-session", cfg.Session.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	withConfigDir(t, map[string]string{"development.yaml": "database: [unterminated"})
	t.Setenv("ATM_ENV", "development")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: Development,
			Database: DatabaseConfig{
				Host:           "localhost",
				Port:           "5432",
				Username:       "atm",
				Database:       "atm",
				QueryTimeout:   time.Second,
				IsolationLevel: "read committed",
			},
			Logger:      LoggerConfig{Level: "warn"},
			Transaction: TransactionConfig{MaxRetries: 3},
			Auth:        AuthConfig{MaxFailedAttempts: 3, BcryptCost: 10, LockoutBackend: LockoutBackendMemory},
			Session:     SessionConfig{Path: "/tmp/s", SigningKey: "0123456789abcdef"},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Reports every problem", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Host = ""
		cfg.Session.SigningKey = "short"
		cfg.Auth.LockoutBackend = "carrier-pigeon"

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.host")
		assert.Contains(t, err.Error(), "session.signingKey")
		assert.Contains(t, err.Error(), "carrier-pigeon")
	})

	t.Run("Redis backend needs an address", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.LockoutBackend = LockoutBackendRedis
		assert.ErrorContains(t, cfg.Validate(), "redis.addr")
	})

	t.Run("Unknown isolation level", func(t *testing.T) {
		cfg := valid()
		cfg.Database.IsolationLevel = "chaos"
		assert.ErrorContains(t, cfg.Validate(), "isolationLevel")
	})
}
