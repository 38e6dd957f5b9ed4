// Package db opens the pgx-backed *sql.DB the GORM layer is built on.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultPingTimeout bounds the connectivity check in Open.
const DefaultPingTimeout = 3 * time.Second

// PoolOptions configures the connection pool of the returned *sql.DB.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPool mirrors the production pool sizing.
var DefaultPool = PoolOptions{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// Open creates a *sql.DB for dsn using the pgx stdlib driver and pings it
// within DefaultPingTimeout.
func Open(ctx context.Context, dsn string, pool PoolOptions) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("db: empty dsn")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	applyPool(sqlDB, pool)

	pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	return sqlDB, nil
}

func applyPool(sqlDB *sql.DB, pool PoolOptions) {
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}
