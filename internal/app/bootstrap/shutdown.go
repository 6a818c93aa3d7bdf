// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown releases the store backend after the HTTP server has drained.
// The memory backend holds nothing to release; for MongoDB the client is
// disconnected within ctx, which WAFFLE bounds by shutdown_timeout.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoClient == nil {
		logger.Info("store released", zap.String("backend", appCfg.StoreBackend))
		return nil
	}
	if err := deps.MongoClient.Disconnect(ctx); err != nil {
		logger.Error("mongo disconnect failed", zap.Error(err))
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	logger.Info("store released", zap.String("backend", BackendMongo))
	return nil
}
