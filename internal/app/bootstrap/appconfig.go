// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration.
//
// Values come from environment variables (NEARBY_*), configuration files, or
// command-line flags, merged by WAFFLE's config loader in LoadConfig. Fields
// are grouped by the component that consumes them.
type AppConfig struct {
	// Document store
	StoreBackend     string // "mongo" or "memory"
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Circuit breaker in front of MongoDB
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	// Write rate limit. Listen port, shutdown grace and CORS origins live in
	// WAFFLE's core config (http_port, shutdown_timeout, cors_allowed_origins).
	RateLimitRequests int // POST requests per client IP per window; 0 disables
	RateLimitWindow   time.Duration

	// Store call deadlines (see system/timeouts)
	TimeoutPing  time.Duration
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
}

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)
