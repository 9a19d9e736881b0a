package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var (
	pgOnce sync.Once
	pgPool *pgxpool.Pool
)

// InitPG connects the process-wide pgx pool (singleton).
func InitPG(ctx context.Context, databaseURL string) error {
	var initErr error
	pgOnce.Do(func() {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			initErr = errors.Wrap(err, "pgxpool new")
			return
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			initErr = errors.Wrap(err, "pgxpool ping")
			return
		}
		pgPool = pool
	})
	return initErr
}

// GetPG returns the pool; InitPG must have succeeded first.
func GetPG() *pgxpool.Pool {
	if pgPool == nil {
		panic("postgres not initialized, call InitPG first")
	}
	return pgPool
}

// ClosePG releases the pool on shutdown.
func ClosePG() {
	if pgPool != nil {
		pgPool.Close()
	}
}
