package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// Locker hands out named, non-blocking locks so a sweep never overlaps with
// another run of the same job, in this process or another one.
type Locker interface {
	// TryLock returns acquired=false without waiting when the lock is held.
	// On success the caller must call unlock exactly once.
	TryLock(ctx context.Context, name string) (unlock func(), acquired bool, err error)
}

// =============================================================================
// PostgreSQL advisory locks
// =============================================================================

// PGLocker implements Locker with session-level PostgreSQL advisory locks.
// Each lock pins a dedicated connection until it is released, since advisory
// locks belong to the session that took them.
type PGLocker struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPGLocker creates a Locker backed by db.
func NewPGLocker(db *sql.DB, logger *slog.Logger) *PGLocker {
	return &PGLocker{db: db, logger: logger}
}

func (l *PGLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", name).Scan(&acquired); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("try advisory lock %q: %w", name, err)
	}
	if !acquired {
		conn.Close()
		return nil, false, nil
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			// The run's context may be done by now.
			if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", name); err != nil {
				l.logger.Error("failed to release advisory lock", "lock", name, "error", err)
			}
			conn.Close()
		})
	}
	return unlock, true, nil
}

// =============================================================================
// In-process locks
// =============================================================================

// LocalLocker implements Locker within a single process. It is used with the
// in-memory store and in tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) TryLock(ctx context.Context, name string) (func(), bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, name)
			l.mu.Unlock()
		})
	}, true, nil
}
