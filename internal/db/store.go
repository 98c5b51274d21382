package db

import (
	"context"
	"fmt"

	"github.com/madfam-org/ticketbooth/internal/config"
	"github.com/madfam-org/ticketbooth/internal/logging"
)

// OpenStore connects to the storage engine selected by cfg.StorageDriver.
// PostgreSQL schemas are migrated before the store is returned.
func OpenStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		manager, err := NewDatabaseManager(ctx, &DatabaseConfig{
			URL:              cfg.DatabaseURL,
			MaxOpenConns:     cfg.DBMaxOpenConns,
			MaxIdleConns:     cfg.DBMaxIdleConns,
			ConnMaxLifetime:  cfg.DBConnMaxLifetime,
			ConnMaxIdleTime:  cfg.DBConnMaxIdleTime,
			ConnTimeout:      cfg.DBConnTimeout,
			StatementTimeout: cfg.DBStatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}

		if err := Migrate(manager.DB()); err != nil {
			manager.Close()
			return nil, err
		}
		logger.Info(ctx, "Database migrations applied")

		return NewPostgresStore(manager), nil

	case config.StorageDriverRedis:
		client, err := NewRedisClient(ctx, &RedisConfig{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.DBConnTimeout,
			ReadTimeout:  cfg.DBStatementTimeout,
			WriteTimeout: cfg.DBStatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil

	case config.StorageDriverMemory:
		logger.Warn(ctx, "Using in-memory token storage; tokens are lost on restart")
		return NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
