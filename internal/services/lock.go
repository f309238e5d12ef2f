package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	orderLockTTL   = 10 * time.Second
	orderLockRetry = 50 * time.Millisecond
)

// lockEntry is one order's in-process mutex plus the number of holders
// and waiters currently interested in it.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// OrderLocker serializes notification processing per order. Within the
// process a keyed mutex guarantees exclusive access; when Redis is
// configured an additional SetNX lease makes the exclusion hold across
// instances. The scope is a single order, never global, so unrelated
// orders reconcile concurrently. Entries are refcounted and dropped
// from the map once the last holder releases, keeping the map bounded
// by the number of in-flight notifications.
type OrderLocker struct {
	cache *RedisCache

	mu    sync.Mutex
	local map[uint]*lockEntry
}

// NewOrderLocker creates a locker. cache may be nil for single-instance
// deployments and tests.
func NewOrderLocker(cache *RedisCache) *OrderLocker {
	return &OrderLocker{
		cache: cache,
		local: make(map[uint]*lockEntry),
	}
}

func (l *OrderLocker) acquire(orderID uint) *lockEntry {
	l.mu.Lock()
	e, ok := l.local[orderID]
	if !ok {
		e = &lockEntry{}
		l.local[orderID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *OrderLocker) releaseLocal(orderID uint, e *lockEntry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.local, orderID)
	}
	l.mu.Unlock()
}

// Lock acquires the per-order lock and returns a release function.
// Blocks until the lock is held or ctx is done.
func (l *OrderLocker) Lock(ctx context.Context, orderID uint) (func(), error) {
	e := l.acquire(orderID)

	if l.cache == nil {
		return func() { l.releaseLocal(orderID, e) }, nil
	}

	key := fmt.Sprintf("lock:order:%d", orderID)
	token := uuid.NewString()
	for {
		ok, err := l.cache.SetNX(ctx, key, token, orderLockTTL)
		if err != nil {
			l.releaseLocal(orderID, e)
			return nil, fmt.Errorf("acquire order lock %d: %w", orderID, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			l.releaseLocal(orderID, e)
			return nil, ctx.Err()
		case <-time.After(orderLockRetry):
		}
	}

	release := func() {
		// The TTL reclaims the lease if the delete is lost.
		_ = l.cache.Delete(context.Background(), key)
		l.releaseLocal(orderID, e)
	}
	return release, nil
}
