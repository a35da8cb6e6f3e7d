package waitlist

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// OfferLocker guards "one live offer per concrete slot". Acquire succeeds for
// exactly one caller per slot while the lock lives; overlapping release
// events for the same slot lose the race and issue no duplicate offer.
type OfferLocker interface {
	Acquire(ctx context.Context, slotID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, slotID string) error
}

const offerLockPrefix = "waitlist:offer:"

// RedisOfferLocker implements OfferLocker with SETNX.
type RedisOfferLocker struct {
	client *redis.Client
}

func NewRedisOfferLocker(client *redis.Client) *RedisOfferLocker {
	return &RedisOfferLocker{client: client}
}

func (l *RedisOfferLocker) Acquire(ctx context.Context, slotID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, offerLockPrefix+slotID, 1, ttl).Result()
}

func (l *RedisOfferLocker) Release(ctx context.Context, slotID string) error {
	return l.client.Del(ctx, offerLockPrefix+slotID).Err()
}

// MemoryOfferLocker is the process-local locker for development and tests.
type MemoryOfferLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

func NewMemoryOfferLocker() *MemoryOfferLocker {
	return &MemoryOfferLocker{locks: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryOfferLocker) Acquire(_ context.Context, slotID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expires, ok := l.locks[slotID]; ok && l.now().Before(expires) {
		return false, nil
	}
	l.locks[slotID] = l.now().Add(ttl)
	return true, nil
}

func (l *MemoryOfferLocker) Release(_ context.Context, slotID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, slotID)
	return nil
}
