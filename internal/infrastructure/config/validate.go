package config

import (
	"errors"
	"fmt"
	"strings"
)

// MinSigningKeyLength is the shortest accepted session signing key
const MinSigningKeyLength = 16

// Validate reports every missing or invalid setting at once
func (c *Config) Validate() error {
	var problems []error
	missing := func(key string) {
		problems = append(problems, fmt.Errorf("missing required configuration: %s", key))
	}

	switch c.Environment {
	case Development, Production, Test:
	default:
		problems = append(problems, fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			c.Environment, Development, Production, Test))
	}

	if c.Database.Host == "" {
		missing("database.host (or ATM_DB_HOST)")
	}
	if c.Database.Port == "" {
		missing("database.port (or ATM_DB_PORT)")
	}
	if c.Database.Username == "" {
		missing("database.username (or ATM_DB_USERNAME)")
	}
	if c.Database.Database == "" {
		missing("database.database (or ATM_DB_NAME)")
	}
	if c.Database.QueryTimeout <= 0 {
		missing("database.queryTimeout")
	}
	switch strings.ToLower(c.Database.IsolationLevel) {
	case "read committed", "repeatable read", "serializable":
	default:
		problems = append(problems, fmt.Errorf("invalid database.isolationLevel %q", c.Database.IsolationLevel))
	}

	if c.Transaction.MaxRetries < 0 {
		problems = append(problems, errors.New("transaction.maxRetries must not be negative"))
	}

	if c.Auth.MaxFailedAttempts <= 0 {
		problems = append(problems, errors.New("auth.maxFailedAttempts must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		problems = append(problems, fmt.Errorf("auth.bcryptCost %d outside 4..31", c.Auth.BcryptCost))
	}
	switch c.Auth.LockoutBackend {
	case LockoutBackendMemory, LockoutBackendDatabase:
	case LockoutBackendRedis:
		if c.Redis.Addr == "" {
			missing("redis.addr (or ATM_REDIS_ADDR)")
		}
	default:
		problems = append(problems, fmt.Errorf("invalid auth.lockoutBackend %q", c.Auth.LockoutBackend))
	}

	if c.Session.Path == "" {
		missing("session.path (or ATM_SESSION_PATH)")
	}
	if len(c.Session.SigningKey) < MinSigningKeyLength {
		problems = append(problems, fmt.Errorf("session.signingKey (or ATM_SESSION_SIGNING_KEY) must be at least %d characters", MinSigningKeyLength))
	}

	if c.Logger.Level == "" {
		missing("logger.level")
	}

	return errors.Join(problems...)
}
