package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/p2pbot/core/logger"
	"log/slog"
)

const connectTimeout = 5 * time.Second

func connAttrs(cfg Config) []any {
	return []any{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
	}
}

// Connect opens the connection pool and verifies connectivity with a ping.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := time.Since(start)
	if err != nil {
		args := append([]any{slog.String("event", "db.connect")}, connAttrs(cfg)...)
		args = append(args,
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		logger.DB.Error("db connect failed", args...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		args := append([]any{slog.String("event", "db.ping")}, connAttrs(cfg)...)
		args = append(args, slog.String("err", pingErr.Error()))
		logger.DB.Error("db ping failed", args...)
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	args := append([]any{slog.String("event", "db.connect")}, connAttrs(cfg)...)
	args = append(args,
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	logger.DB.Info("db connected", args...)

	return db, nil
}

// WaitForPostgres polls the database until it accepts connections or
// the timeout elapses. Used before migrations on fresh deployments
// where the database container may still be starting.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				_ = db.Close()
				return nil
			}
			_ = db.Close()
		}
		lastErr = err
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
