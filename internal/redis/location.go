package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	driverLocationKey = "drivers:locations"
	pendingTripKey    = "trips:pending"
)

// DriverLocation represents a driver's position.
type DriverLocation struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// NearbyTrip is a pending trip's pickup point with its distance from the
// queried location.
type NearbyTrip struct {
	TripID     string
	Lat        float64
	Lng        float64
	DistanceKm float64
}

// LocationStore handles the geo indexes for driver positions and pending
// trip pickups.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateDriverLocation stores a driver's location using GEOADD.
func (s *LocationStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RemoveDriverLocation removes a driver from the geo index.
func (s *LocationStore) RemoveDriverLocation(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverLocationKey, driverID).Err()
}

// AddPendingTrip indexes a pending trip's pickup point.
func (s *LocationStore) AddPendingTrip(ctx context.Context, tripID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, pendingTripKey, &redis.GeoLocation{
		Name:      tripID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// RemovePendingTrip removes a trip from the pending index. Called when a
// trip leaves the PENDING state for any reason.
func (s *LocationStore) RemovePendingTrip(ctx context.Context, tripID string) error {
	return s.client.ZRem(ctx, pendingTripKey, tripID).Err()
}

// FindNearbyPendingTrips returns pending trip IDs within the given radius
// (in kilometers), nearest first.
func (s *LocationStore) FindNearbyPendingTrips(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyTrip, error) {
	results, err := s.client.GeoRadius(ctx, pendingTripKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	trips := make([]NearbyTrip, 0, len(results))
	for _, r := range results {
		trips = append(trips, NearbyTrip{
			TripID:     r.Name,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			DistanceKm: r.Dist,
		})
	}

	return trips, nil
}
