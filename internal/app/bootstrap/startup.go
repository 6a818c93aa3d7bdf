// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/nearby/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the store and schema are ready
// and before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Schema helpers log through zap.L().
	zap.ReplaceGlobals(logger)

	timeouts.Configure(timeouts.Config{
		Ping:  appCfg.TimeoutPing,
		Read:  appCfg.TimeoutRead,
		Write: appCfg.TimeoutWrite,
	})
	cur := timeouts.Current()
	logger.Info("store call timeouts",
		zap.Duration("ping", cur.Ping),
		zap.Duration("read", cur.Read),
		zap.Duration("write", cur.Write))
	return nil
}

// OnReady logs the listen address once the server accepts traffic.
func OnReady(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	logger.Info("nearby ready",
		zap.Int("http_port", coreCfg.HTTP.HTTPPort),
		zap.String("backend", deps.Store.Backend()))
}
