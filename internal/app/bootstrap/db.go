// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/nearby/internal/app/store/docstore"
	"github.com/dalemusser/nearby/internal/app/system/indexes"
	"github.com/dalemusser/nearby/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured document store. For MongoDB the primary is
// pinged so a bad address fails startup instead of the first request.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	if appCfg.StoreBackend == BackendMemory {
		logger.Info("document store ready", zap.String("backend", BackendMemory))
		return DBDeps{Store: docstore.NewMemory()}, nil
	}

	if coreCfg != nil && coreCfg.DBConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, coreCfg.DBConnectTimeout)
		defer cancel()
	}

	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	store := docstore.NewMongo(db, docstore.BreakerConfig{
		FailureThreshold: appCfg.BreakerFailureThreshold,
		OpenTimeout:      appCfg.BreakerOpenTimeout,
	}, logger)

	logger.Info("document store ready",
		zap.String("backend", BackendMongo),
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{MongoClient: client, MongoDatabase: db, Store: store}, nil
}

// EnsureSchema creates collections, attaches validators and reconciles
// indexes. The memory backend has no schema.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	var errs []error
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		errs = append(errs, fmt.Errorf("validators: %w", err))
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		errs = append(errs, fmt.Errorf("indexes: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("schema setup failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured", zap.String("database", deps.MongoDatabase.Name()))
	return nil
}
