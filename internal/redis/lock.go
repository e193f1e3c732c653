package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking and one-shot marks in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireTripLock attempts to acquire the accept lock for the given trip.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseTripLock releases the accept lock for the given trip.
func (s *LockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:trip:%s", tripID)

	return s.client.Del(ctx, key).Err()
}

// MarkReminderSent records that an expiry reminder was delivered for the
// given driver and expiry instant. Returns true exactly once per pair, so
// re-running the reminder loop never double-notifies.
func (s *LockStore) MarkReminderSent(ctx context.Context, driverID string, expiry time.Time, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("reminder:%s:%d", driverID, expiry.Unix())

	return s.client.SetNX(ctx, key, "1", ttl).Result()
}
