package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/core"
	"github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/atm-cli/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
)

// TestDBHostEnv names the variable that enables Postgres integration tests
const TestDBHostEnv = "ATM_TEST_DB_HOST"

// TestDBManager provides utilities for testing with a database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates a test database manager, skipping the test
// unless ATM_TEST_DB_HOST points at a Postgres server
func NewTestDBManager(t *testing.T, logger coreport.Logger) *TestDBManager {
	t.Helper()

	host, ok := os.LookupEnv(TestDBHostEnv)
	if !ok || host == "" {
		t.Skipf("%s not set, skipping Postgres integration test", TestDBHostEnv)
	}

	config := DefaultConfig()
	config.Host = host
	config.Port = getEnvIntOrDefault("ATM_TEST_DB_PORT", 5432)
	config.Username = getEnvOrDefault("ATM_TEST_DB_USERNAME", "postgres")
	config.Password = getEnvOrDefault("ATM_TEST_DB_PASSWORD", "postgres")
	config.Database = getEnvOrDefault("ATM_TEST_DB_DATABASE", "atm_test")
	config.MaxOpenConns = 10
	config.MaxIdleConns = 5
	config.LogLevel = "silent"

	return &TestDBManager{
		Manager:      NewManager(config, logger, timeprovider.NewRealTimeProvider()),
		Config:       config,
		Logger:       logger,
		TimeProvider: timeprovider.NewRealTimeProvider(),
	}
}

// Connect connects to the test database and closes it when the test ends
func (m *TestDBManager) Connect(t *testing.T) {
	t.Helper()

	if _, err := m.Manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := m.Manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})
}

// SetupTestDB drops every table and migrates the schema from scratch
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error; err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}

	if _, err := m.Manager.MigrationManager().MigrateAll(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

// CreateTestAccount inserts an account with the given balance and returns its ID
func (m *TestDBManager) CreateTestAccount(t *testing.T, name, balance string) uint64 {
	t.Helper()

	now := time.Now()
	account := model.Account{
		Name:      name,
		PinHash:   "hash:" + name,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Manager.DB().Create(&account).Error; err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account.ID
}

// Helper functions to get environment variables or defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
