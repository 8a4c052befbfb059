package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/config"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
)

// NewConnection opens the pool and pings Postgres until it accepts connections, backing
// off between attempts.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	wait := time.Second
	for attempt := 1; ; attempt++ {
		err = ping(ctx, db)
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			db.Close()
			return nil, fmt.Errorf("ping database after %d attempts: %w", attempt, err)
		}

		log.Warn("database not ready", zap.Int("attempt", attempt), zap.Duration("retry_in", wait), zap.Error(err))
		if err := sleep(ctx, wait); err != nil {
			db.Close()
			return nil, err
		}
		wait *= 2
	}

	log.Info("connected to database",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return db, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return db.PingContext(ctx)
}
