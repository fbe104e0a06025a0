package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "ATM"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
	"$HOME/.atm",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
	"../.env",
	"../../.env",
}

// LoadConfig loads configuration for the environment named by ATM_ENV.
// A missing config file is not an error; defaults and environment apply.
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		return nil, err
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env
	processDurations(&config)

	path, err := expandHome(config.Session.Path)
	if err != nil {
		return nil, err
	}
	config.Session.Path = path

	return &config, nil
}

// loadDotEnvFile loads the first .env file found. Having none is fine.
func loadDotEnvFile() error {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("could not load %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// setDefaults sets default values suited to a short-lived CLI process
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 5)       // seconds
	v.SetDefault("server.writeTimeout", 5)      // seconds
	v.SetDefault("server.idleTimeout", 30)      // seconds
	v.SetDefault("server.readHeaderTimeout", 2) // seconds
	v.SetDefault("server.shutdownTimeout", 5)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 4)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 5) // minutes
	v.SetDefault("database.connMaxIdleTime", 1) // minutes
	v.SetDefault("database.queryTimeout", 5)    // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds
	v.SetDefault("database.isolationLevel", "read committed")
	v.SetDefault("database.slowQueryMs", 200)

	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stderr")
	v.SetDefault("logger.callerInfo", false)

	v.SetDefault("transaction.maxRetries", 3)
	v.SetDefault("transaction.retryIntervalMs", 50)
	v.SetDefault("transaction.maxRetryIntervalMs", 1000)

	v.SetDefault("auth.maxFailedAttempts", 3)
	v.SetDefault("auth.lockoutDuration", 15) // minutes
	v.SetDefault("auth.lockoutBackend", LockoutBackendDatabase)
	v.SetDefault("auth.bcryptCost", 12)

	v.SetDefault("session.path", "~/.atm/session")
	v.SetDefault("session.signingKey", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "atm:lockout:")
}

// getEnvironment determines the environment to use based on ATM_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the short ATM_* variables onto config keys
func processEnvOverrides(v *viper.Viper) {
	stringOverrides := map[string]string{
		"ATM_DB_HOST":              "database.host",
		"ATM_DB_PORT":              "database.port",
		"ATM_DB_USERNAME":          "database.username",
		"ATM_DB_PASSWORD":          "database.password",
		"ATM_DB_NAME":              "database.database",
		"ATM_DB_SSL_MODE":          "database.sslMode",
		"ATM_DB_ISOLATION_LEVEL":   "database.isolationLevel",
		"ATM_LOGGER_LEVEL":         "logger.level",
		"ATM_LOGGER_FORMAT":        "logger.format",
		"ATM_SESSION_PATH":         "session.path",
		"ATM_SESSION_SIGNING_KEY":  "session.signingKey",
		"ATM_AUTH_LOCKOUT_BACKEND": "auth.lockoutBackend",
		"ATM_REDIS_ADDR":           "redis.addr",
		"ATM_REDIS_PASSWORD":       "redis.password",
		"ATM_SERVER_HOST":          "server.host",
	}
	for env, key := range stringOverrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	intOverrides := map[string]string{
		"ATM_DB_QUERY_TIMEOUT_SECONDS": "database.queryTimeout",
		"ATM_DB_MAX_OPEN_CONNS":        "database.maxOpenConns",
		"ATM_TRANSACTION_MAX_RETRIES":  "transaction.maxRetries",
		"ATM_AUTH_MAX_FAILED_ATTEMPTS": "auth.maxFailedAttempts",
		"ATM_AUTH_LOCKOUT_MINUTES":     "auth.lockoutDuration",
		"ATM_AUTH_BCRYPT_COST":         "auth.bcryptCost",
		"ATM_SERVER_PORT":              "server.port",
		"ATM_REDIS_DB":                 "redis.db",
	}
	for env, key := range intOverrides {
		if value, ok := getEnvInt(env); ok {
			v.Set(key, value)
		}
	}
}

// getEnvInt reads an integer environment variable
func getEnvInt(name string) (int, bool) {
	valStr := os.Getenv(name)
	if valStr == "" {
		return 0, false
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, false
	}
	return val, true
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second

	config.Auth.LockoutDuration = time.Duration(config.Auth.LockoutDuration) * time.Minute
}

// expandHome resolves a leading ~ in path
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
