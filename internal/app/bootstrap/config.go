// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, store_backend, etc.
//   - Environment variables: NEARBY_MONGO_URI, NEARBY_STORE_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --store_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Document store: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "nearby", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "breaker_failure_threshold", Default: 5, Desc: "Consecutive store outages before the circuit opens"},
	{Name: "breaker_open_timeout", Default: "30s", Desc: "How long the circuit stays open before probing"},

	{Name: "rate_limit_requests", Default: 60, Desc: "POST requests per client IP per window (0 disables)"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window"},

	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for health and diagnostic store calls"},
	{Name: "timeout_read", Default: "5s", Desc: "Deadline for list store calls"},
	{Name: "timeout_write", Default: "10s", Desc: "Deadline for create, join and send store calls"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NEARBY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		BreakerFailureThreshold: uint32(appValues.Int("breaker_failure_threshold")),
		BreakerOpenTimeout:      appValues.Duration("breaker_open_timeout", 30*time.Second),

		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", time.Minute),

		TimeoutPing:  appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutRead:  appValues.Duration("timeout_read", 5*time.Second),
		TimeoutWrite: appValues.Duration("timeout_write", 10*time.Second),
	}

	port, err := portOverride(coreCfg.HTTP.HTTPPort, os.Getenv("PORT"))
	if err != nil {
		return nil, AppConfig{}, err
	}
	if port != coreCfg.HTTP.HTTPPort {
		logger.Info("http_port taken from PORT", zap.Int("port", port))
	}
	coreCfg.HTTP.HTTPPort = port

	return coreCfg, appCfg, nil
}

// portOverride applies the platform-style PORT variable on top of WAFFLE's
// http_port.
func portOverride(configured int, env string) (int, error) {
	env = strings.TrimSpace(env)
	if env == "" {
		return configured, nil
	}
	p, err := strconv.Atoi(env)
	if err != nil {
		return 0, fmt.Errorf("invalid PORT %q: %w", env, err)
	}
	return p, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked with WAFFLE's validator when the mongo backend
// is selected, so a typo fails startup before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return fmt.Errorf("mongo_database is required")
		}
		if appCfg.MongoMaxPoolSize > 0 && appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
			return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
				appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
		}
	case BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	// PORT is applied after WAFFLE validated http_port.
	if p := coreCfg.HTTP.HTTPPort; p < 1 || p > 65535 {
		return fmt.Errorf("http_port %d out of range", p)
	}
	if appCfg.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests must be >= 0")
	}
	return nil
}
