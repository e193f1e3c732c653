package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for the geo indexes.
type LocationStoreInterface interface {
	UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error
	RemoveDriverLocation(ctx context.Context, driverID string) error
	AddPendingTrip(ctx context.Context, tripID string, lat, lng float64) error
	RemovePendingTrip(ctx context.Context, tripID string) error
	FindNearbyPendingTrips(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyTrip, error)
}

// LockStoreInterface defines the interface for distributed locking and
// one-shot marks.
type LockStoreInterface interface {
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
	MarkReminderSent(ctx context.Context, driverID string, expiry time.Time, ttl time.Duration) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
