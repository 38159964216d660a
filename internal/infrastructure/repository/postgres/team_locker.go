package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// AdvisoryTeamLocker serializes team syncs across processes with session-level
// advisory locks. Each held lock pins one pooled connection until unlock.
type AdvisoryTeamLocker struct {
	db *sqlx.DB
}

func NewAdvisoryTeamLocker(db *sqlx.DB) *AdvisoryTeamLocker {
	return &AdvisoryTeamLocker{db: db}
}

func (l *AdvisoryTeamLocker) TryLock(ctx context.Context, teamID string) (func(), bool, error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection for team lock: %w", err)
	}

	key := advisoryLockKey(teamID)
	var acquired bool
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock($1)", key); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("try advisory lock team=%s: %w", teamID, err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The sync context may already be cancelled; unlock on a fresh one.
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			releaseAdvisoryLock(unlockCtx, conn, key)
		})
	}, true, nil
}

type lockConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Raw(f func(driverConn any) error) error
	Close() error
}

// releaseAdvisoryLock unlocks and hands the connection back. A connection
// whose unlock failed may still hold the session lock, so it is discarded
// instead of going back to the pool.
func releaseAdvisoryLock(ctx context.Context, conn lockConn, key int64) {
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", key); err != nil {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	_ = conn.Close()
}

func advisoryLockKey(teamID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("competition-sync:"))
	_, _ = h.Write([]byte(teamID))
	return int64(h.Sum64())
}
