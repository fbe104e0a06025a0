package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Session     SessionConfig     `mapstructure:"session"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

// ServerConfig contains settings for the probe server started by `atm serve`
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	IsolationLevel  string        `mapstructure:"isolationLevel"`
	SlowQueryMs     int64         `mapstructure:"slowQueryMs"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// TransactionConfig controls how the engine retries concurrency conflicts
type TransactionConfig struct {
	MaxRetries         int   `mapstructure:"maxRetries"`
	RetryIntervalMs    int64 `mapstructure:"retryIntervalMs"`
	MaxRetryIntervalMs int64 `mapstructure:"maxRetryIntervalMs"`
}

// AuthConfig contains login and PIN hashing settings
type AuthConfig struct {
	MaxFailedAttempts int           `mapstructure:"maxFailedAttempts"`
	LockoutDuration   time.Duration `mapstructure:"lockoutDuration"` // minutes, 0 = until a successful login
	LockoutBackend    string        `mapstructure:"lockoutBackend"`  // memory, database or redis
	BcryptCost        int           `mapstructure:"bcryptCost"`
}

// SessionConfig contains settings for the session file
type SessionConfig struct {
	Path       string `mapstructure:"path"`
	SigningKey string `mapstructure:"signingKey"`
}

// RedisConfig is used when auth.lockoutBackend is redis
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// Lockout backends
const (
	LockoutBackendMemory   = "memory"
	LockoutBackendDatabase = "database"
	LockoutBackendRedis    = "redis"
)
