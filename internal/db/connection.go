package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/madfam-org/ticketbooth/internal/logging"
)

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	ConnTimeout      time.Duration
	StatementTimeout time.Duration
}

type DatabaseManager struct {
	db     *sql.DB
	config *DatabaseConfig
	logger logging.Logger
}

func NewDatabaseManager(ctx context.Context, config *DatabaseConfig, logger logging.Logger) (*DatabaseManager, error) {
	logger = logger.WithFields(logging.Fields{"component": "database", "driver": "postgres"})

	connStr, err := buildConnectionString(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, config.ConnTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info(ctx, "Database connection pool configured",
		logging.Int("max_open_conns", config.MaxOpenConns),
		logging.Int("max_idle_conns", config.MaxIdleConns),
	)

	return &DatabaseManager{
		db:     db,
		config: config,
		logger: logger,
	}, nil
}

// buildConnectionString adds pool-independent session settings to the
// configured URL or keyword/value DSN.
func buildConnectionString(config *DatabaseConfig) (string, error) {
	params := map[string]string{
		"application_name": "ticketbooth",
	}
	if config.ConnTimeout > 0 {
		params["connect_timeout"] = fmt.Sprintf("%d", int(config.ConnTimeout.Seconds()))
	}
	if config.StatementTimeout > 0 {
		params["statement_timeout"] = fmt.Sprintf("%d", config.StatementTimeout.Milliseconds())
	}

	if strings.HasPrefix(config.URL, "postgres://") || strings.HasPrefix(config.URL, "postgresql://") {
		u, err := url.Parse(config.URL)
		if err != nil {
			return "", fmt.Errorf("invalid database URL: %w", err)
		}
		query := u.Query()
		for key, value := range params {
			if query.Get(key) == "" {
				query.Set(key, value)
			}
		}
		u.RawQuery = query.Encode()
		return u.String(), nil
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		if !strings.Contains(config.URL, key+"=") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	connStr := strings.TrimSpace(config.URL)
	for _, key := range keys {
		if connStr != "" {
			connStr += " "
		}
		connStr += fmt.Sprintf("%s=%s", key, params[key])
	}
	return connStr, nil
}

func (dm *DatabaseManager) DB() *sql.DB {
	return dm.db
}

func (dm *DatabaseManager) Close() error {
	return dm.db.Close()
}

// HealthCheck pings the database and runs a trivial query.
func (dm *DatabaseManager) HealthCheck(ctx context.Context) error {
	if err := dm.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var one int
	if err := dm.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}

	stats := dm.db.Stats()
	dm.logger.Debug(ctx, "Database health check passed",
		logging.Int("open_connections", stats.OpenConnections),
		logging.Int("in_use", stats.InUse),
		logging.Int("idle", stats.Idle),
	)

	return nil
}

// WatchPool logs pool pressure every interval until ctx is done.
func (dm *DatabaseManager) WatchPool(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats := dm.db.Stats()
		if stats.WaitCount > 0 {
			dm.logger.Warn(ctx, "Database connections are waiting",
				logging.Int64("wait_count", stats.WaitCount),
				logging.Duration("wait_duration", stats.WaitDuration),
			)
		}
		if stats.MaxOpenConnections > 0 && stats.OpenConnections == stats.MaxOpenConnections {
			dm.logger.Warn(ctx, "Database connection pool is at maximum capacity")
		}
	}
}
