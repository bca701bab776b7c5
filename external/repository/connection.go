package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/attendance/internal/repository"
)

// ConnectionManager hands the single underlying pool out to any number of
// concurrent callers. The pool is opened on the first Acquire and closed when
// the last holder releases it; a later Acquire reopens it cleanly. Stores
// acquire around each operation and release on every exit path.
type ConnectionManager struct {
	open  func(ctx context.Context) (*pgxpool.Pool, error)
	close func(pool *pgxpool.Pool)

	mu     sync.Mutex
	refs   int
	pool   *pgxpool.Pool
	opened bool
}

func NewConnectionManager(databaseURL string) *ConnectionManager {
	return &ConnectionManager{
		open: func(ctx context.Context) (*pgxpool.Pool, error) {
			pool, err := pgxpool.New(ctx, databaseURL)
			if err != nil {
				return nil, fmt.Errorf("failed to connect database: %w", err)
			}
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to ping database: %w", err)
			}
			return pool, nil
		},
		close: func(pool *pgxpool.Pool) {
			pool.Close()
		},
	}
}

// Acquire returns the shared pool, opening it if no one holds it yet. On
// open failure the reference count is left untouched and the error surfaces
// as a StorageError.
func (m *ConnectionManager) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opened {
		pool, err := m.open(ctx)
		if err != nil {
			return nil, repository.NewStorageError("open connection", err)
		}
		m.pool = pool
		m.opened = true
		slog.Debug("database pool opened")
	}
	m.refs++
	return m.pool, nil
}

// Release drops one reference and closes the pool when the last one goes.
// A mismatched extra Release is clamped at zero rather than double-closing.
func (m *ConnectionManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs == 0 {
		return
	}
	m.refs--
	if m.refs == 0 && m.opened {
		m.close(m.pool)
		m.pool = nil
		m.opened = false
		slog.Debug("database pool closed")
	}
}
