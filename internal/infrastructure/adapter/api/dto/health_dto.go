package dto

// Probe statuses
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// PoolStats mirrors the database connection pool statistics
type PoolStats struct {
	OpenConnections    int   `json:"openConnections"`
	IdleConnections    int   `json:"idleConnections"`
	InUse              int   `json:"inUse"`
	MaxOpenConnections int   `json:"maxOpenConnections"`
	WaitCount          int64 `json:"waitCount"`
	WaitDurationMs     int64 `json:"waitDurationMs"`
	NearlyExhausted    bool  `json:"nearlyExhausted"`
}

// ReadinessResponse is returned by the readiness probe
type ReadinessResponse struct {
	Status        string     `json:"status"`
	Database      string     `json:"database"`
	SchemaVersion string     `json:"schemaVersion,omitempty"`
	Pool          *PoolStats `json:"pool,omitempty"`
	Error         string     `json:"error,omitempty"`
}
