package config

import (
	"context"
	"fmt"
	"time"

	"cashflow_tracker/internal/log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectDB establishes a connection pool to PostgreSQL, retrying a bounded
// number of times while the database comes up.
func ConnectDB(ctx context.Context, cfg DatabaseConfig, logger *log.Logger) (*pgxpool.Pool, error) {
	logger = logger.WithComponent(log.ComponentStorage)

	var pool *pgxpool.Pool
	var err error
	for i := 0; i < cfg.ConnectRetries; i++ {
		pool, err = pgxpool.New(ctx, cfg.DSN())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				logger.Info("Successfully connected to PostgreSQL", "host", cfg.Host, "database", cfg.Name)
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn("Failed to connect to database",
			"attempt", i+1, "max_attempts", cfg.ConnectRetries,
			log.FieldError, err, "retry_in", cfg.RetryInterval.String())

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", cfg.ConnectRetries, err)
}
