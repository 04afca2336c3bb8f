package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/repositories"
	"github.com/google/uuid"
)

var _ repositories.DrawLockRepository = (*DrawLocks)(nil)

type lockEntry struct {
	owner     string
	expiresAt time.Time
}

// DrawLocks is a process-local lease table
type DrawLocks struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	now   func() time.Time
}

// NewDrawLocks creates an empty lease table
func NewDrawLocks() *DrawLocks {
	return &DrawLocks{
		locks: make(map[string]lockEntry),
		now:   time.Now,
	}
}

// WithClock replaces the time source, used to exercise lease expiry
func (l *DrawLocks) WithClock(now func() time.Time) *DrawLocks {
	l.now = now
	return l
}

// Acquire grants a lease unless an unexpired one exists
func (l *DrawLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (repositories.Lease, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, held := l.locks[key]; held && now.Before(entry.expiresAt) {
		return nil, repositories.ErrLockHeld
	}
	owner := uuid.NewString()
	l.locks[key] = lockEntry{owner: owner, expiresAt: now.Add(ttl)}
	return &lease{locks: l, key: key, owner: owner}, nil
}

type lease struct {
	locks *DrawLocks
	key   string
	owner string
}

func (le *lease) Release(ctx context.Context) error {
	le.locks.mu.Lock()
	defer le.locks.mu.Unlock()

	// a taken-over lease belongs to someone else now
	if entry, ok := le.locks.locks[le.key]; ok && entry.owner == le.owner {
		delete(le.locks.locks, le.key)
	}
	return nil
}
