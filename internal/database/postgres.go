package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolOptions sizes the connection pool behind the exchange repository.
// Every call holds one connection for a single statement, so the pool only
// needs to cover the number of concurrent submissions.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

func (o PoolOptions) apply(db *sql.DB) {
	db.SetMaxOpenConns(o.MaxOpenConns)
	idle := o.MaxIdleConns
	if o.MaxOpenConns > 0 && idle > o.MaxOpenConns {
		idle = o.MaxOpenConns
	}
	db.SetMaxIdleConns(idle)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
}

// ConnectDB opens a pgx-backed pool and checks it with a ping before
// handing it out.
func ConnectDB(ctx context.Context, dsn string, opts PoolOptions) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	opts.apply(db)

	if opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	return db, nil
}
