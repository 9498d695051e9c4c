package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	PersistTimeout  = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	StartupTimeout  = 15 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Rating constants. EloFloor caps how far a loss can drop a rating;
// winners have no ceiling.
const (
	EloK       = 32.0
	DefaultElo = 1200.0
	EloFloor   = 800.0
)
