package service

import (
	"context"
	"log"

	"farebid/internal/domain"
	"farebid/internal/redis"
	"farebid/internal/repository"
)

// AvailabilityService enforces driver online/offline/on-trip transitions,
// conditioned on the subscription ledger and on vehicle readiness. The
// available <-> on-trip edges belong to the trip lifecycle and are never
// driven from here.
type AvailabilityService struct {
	store     repository.Store
	subs      *SubscriptionService
	locations redis.LocationStoreInterface
	publisher StatusPublisher
	clock     Clock
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	store repository.Store,
	subs *SubscriptionService,
	locations redis.LocationStoreInterface,
	publisher StatusPublisher,
	clock Clock,
) *AvailabilityService {
	return &AvailabilityService{
		store:     store,
		subs:      subs,
		locations: locations,
		publisher: publisher,
		clock:     clock,
	}
}

// GoOnlineRequest contains the parameters for a driver going online.
type GoOnlineRequest struct {
	DriverID    string
	Lat         float64
	Lng         float64
	HasLocation bool
}

// GoOnline moves a driver to AVAILABLE. Requires a currently eligible
// subscription and a ready vehicle. Idempotent when the driver is already
// available.
func (s *AvailabilityService) GoOnline(ctx context.Context, req GoOnlineRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	if req.HasLocation && (!isValidLatitude(req.Lat) || !isValidLongitude(req.Lng)) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.store.Drivers().GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	switch driver.Status {
	case domain.DriverStatusAvailable:
		return driver, nil
	case domain.DriverStatusOnTrip:
		return nil, ErrTripInProgress
	}

	now := s.clock.Now()
	if !s.subs.CanAcceptWork(driver, now) {
		return nil, ErrSubscriptionRequired
	}

	vehicle, err := s.store.Vehicles().GetReadyByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNoActiveVehicle
	}

	driver.Status = domain.DriverStatusAvailable
	driver.ActiveVehicleID = vehicle.ID
	if req.HasLocation {
		driver.Lat = req.Lat
		driver.Lng = req.Lng
		driver.LocationUpdatedAt = now
	}

	if err := s.store.Drivers().Update(ctx, driver); err != nil {
		return nil, err
	}

	if req.HasLocation {
		if err := s.locations.UpdateDriverLocation(ctx, driver.ID, req.Lat, req.Lng); err != nil {
			log.Printf("update driver %s location index failed: %v", driver.ID, err)
		}
	}

	s.publishStatus(driver)

	return driver, nil
}

// GoOffline moves a driver to OFF_DUTY. Rejected while the driver is on a
// trip; otherwise unconditional.
func (s *AvailabilityService) GoOffline(ctx context.Context, driverID, reason string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	switch driver.Status {
	case domain.DriverStatusOnTrip:
		return nil, ErrTripInProgress
	case domain.DriverStatusOffDuty:
		return driver, nil
	}

	driver.Status = domain.DriverStatusOffDuty
	if err := s.store.Drivers().Update(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.locations.RemoveDriverLocation(ctx, driver.ID); err != nil {
		log.Printf("remove driver %s from location index failed: %v", driver.ID, err)
	}

	s.publishStatus(driver)

	return driver, nil
}

// Suspend moves a driver to SUSPENDED. Only the subscription sweep calls
// this; there is no direct API. Idempotent for already-suspended drivers.
func (s *AvailabilityService) Suspend(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if driver.Status == domain.DriverStatusSuspended {
		return nil
	}

	driver.Status = domain.DriverStatusSuspended
	if err := s.store.Drivers().Update(ctx, driver); err != nil {
		return err
	}

	if err := s.locations.RemoveDriverLocation(ctx, driver.ID); err != nil {
		log.Printf("remove driver %s from location index failed: %v", driver.ID, err)
	}

	s.publishStatus(driver)

	return nil
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation records a driver's position and relays it to watchers.
func (s *AvailabilityService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) (*domain.Driver, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return nil, ErrInvalidLocation
	}

	driver, err := s.store.Drivers().GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	driver.Lat = req.Lat
	driver.Lng = req.Lng
	driver.LocationUpdatedAt = s.clock.Now()

	if err := s.store.Drivers().Update(ctx, driver); err != nil {
		return nil, err
	}

	if err := s.locations.UpdateDriverLocation(ctx, driver.ID, req.Lat, req.Lng); err != nil {
		log.Printf("update driver %s location index failed: %v", driver.ID, err)
	}

	s.publish(DriverTopic(driver.ID), Event{
		Type: EventDriverLocation,
		Data: map[string]any{
			"driver_id": driver.ID,
			"lat":       driver.Lat,
			"lng":       driver.Lng,
		},
		At: driver.LocationUpdatedAt,
	})

	return driver, nil
}

// GetStatus retrieves a driver's current state.
func (s *AvailabilityService) GetStatus(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.store.Drivers().GetByID(ctx, driverID)
}

func (s *AvailabilityService) publishStatus(driver *domain.Driver) {
	s.publish(DriverTopic(driver.ID), Event{
		Type: EventDriverStatus,
		Data: map[string]any{
			"driver_id": driver.ID,
			"status":    driver.Status,
		},
		At: s.clock.Now(),
	})
}

func (s *AvailabilityService) publish(topic string, event Event) {
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("publish %s to %s failed: %v", event.Type, topic, err)
	}
}
