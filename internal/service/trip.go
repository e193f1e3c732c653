package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"farebid/internal/domain"
	"farebid/internal/redis"
	"farebid/internal/repository"
)

const defaultVehicleClass = "STANDARD"

// TripConfig contains trip discovery parameters.
type TripConfig struct {
	SearchRadiusKm float64 // default radius for nearby pending trips
}

// DefaultTripConfig returns the default trip configuration.
func DefaultTripConfig() TripConfig {
	return TripConfig{SearchRadiusKm: 5.0}
}

// TripService owns the trip lifecycle: pending -> assigned -> in_progress
// -> completed, with cancellation allowed from every non-terminal state.
// Terminal trips are immutable.
type TripService struct {
	store     repository.Store
	subs      *SubscriptionService
	estimator *FareEstimator
	locations redis.LocationStoreInterface
	locks     redis.LockStoreInterface
	publisher StatusPublisher
	clock     Clock
	cfg       TripConfig
}

// NewTripService creates a new TripService.
func NewTripService(
	store repository.Store,
	subs *SubscriptionService,
	estimator *FareEstimator,
	locations redis.LocationStoreInterface,
	locks redis.LockStoreInterface,
	publisher StatusPublisher,
	clock Clock,
	cfg TripConfig,
) *TripService {
	return &TripService{
		store:     store,
		subs:      subs,
		estimator: estimator,
		locations: locations,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	RiderID            string
	PickupLat          float64
	PickupLng          float64
	PickupAddress      string
	DestinationLat     float64
	DestinationLng     float64
	DestinationAddress string
	VehicleClass       string
	PassengerCount     int
}

// CreateTrip creates a trip in PENDING state. Distance and the estimated
// fare are computed here, once, and never recomputed afterwards.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.store.Users().GetByID(ctx, req.RiderID); err != nil {
		return nil, err
	}

	distanceKm, fare := s.estimator.Estimate(
		req.PickupLat, req.PickupLng,
		req.DestinationLat, req.DestinationLng,
	)

	vehicleClass := req.VehicleClass
	if vehicleClass == "" {
		vehicleClass = defaultVehicleClass
	}

	trip := &domain.Trip{
		ID:                 uuid.New().String(),
		RiderID:            req.RiderID,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		DestinationLat:     req.DestinationLat,
		DestinationLng:     req.DestinationLng,
		DestinationAddress: req.DestinationAddress,
		VehicleClass:       vehicleClass,
		PassengerCount:     req.PassengerCount,
		DistanceKm:         distanceKm,
		EstimatedFare:      fare,
		Status:             domain.TripStatusPending,
		CreatedAt:          s.clock.Now(),
	}

	if err := s.store.Trips().Create(ctx, trip); err != nil {
		return nil, err
	}

	if err := s.locations.AddPendingTrip(ctx, trip.ID, trip.PickupLat, trip.PickupLng); err != nil {
		log.Printf("index pending trip %s failed: %v", trip.ID, err)
	}

	s.publish(DriversTopic, Event{
		Type: EventTripCreated,
		Data: map[string]any{
			"trip_id":        trip.ID,
			"pickup_lat":     trip.PickupLat,
			"pickup_lng":     trip.PickupLng,
			"vehicle_class":  trip.VehicleClass,
			"estimated_fare": trip.EstimatedFare,
			"distance_km":    trip.DistanceKm,
		},
		At: trip.CreatedAt,
	})

	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	return s.store.Trips().GetByID(ctx, tripID)
}

// ListNearbyPending returns pending trips around the driver's last known
// position, nearest first. The geo index may lag the store, so each trip's
// status is re-checked before it is returned.
func (s *TripService) ListNearbyPending(ctx context.Context, driverID string, radiusKm float64) ([]*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if driver.LocationUpdatedAt.IsZero() {
		return nil, ErrNoDriverLocation
	}

	if radiusKm <= 0 {
		radiusKm = s.cfg.SearchRadiusKm
	}

	nearby, err := s.locations.FindNearbyPendingTrips(ctx, driver.Lat, driver.Lng, radiusKm)
	if err != nil {
		return nil, err
	}

	if len(nearby) == 0 {
		return nil, nil
	}

	ids := make([]string, len(nearby))
	for i, n := range nearby {
		ids[i] = n.TripID
	}

	trips, err := s.store.Trips().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Trip, len(trips))
	for _, trip := range trips {
		if trip.Status == domain.TripStatusPending {
			byID[trip.ID] = trip
		}
	}

	// Preserve nearest-first ordering from the geo index.
	ordered := make([]*domain.Trip, 0, len(byID))
	for _, n := range nearby {
		if trip, ok := byID[n.TripID]; ok {
			ordered = append(ordered, trip)
		}
	}

	return ordered, nil
}

// AcceptDirect lets a driver claim an unbid pending trip outright at the
// estimated fare. Eligibility, vehicle readiness, and the trip's status are
// re-checked inside the transaction, so two drivers racing for one trip
// leave exactly one assigned; the loser fails with ErrTripNoLongerAvailable.
func (s *TripService) AcceptDirect(ctx context.Context, tripID, driverID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if !s.subs.CanAcceptWork(driver, s.clock.Now()) {
		return nil, ErrSubscriptionRequired
	}

	trip, err := s.store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusPending {
		return nil, ErrTripNoLongerAvailable
	}

	locked, err := s.locks.AcquireTripLock(ctx, tripID, acceptLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrTripNoLongerAvailable
	}
	defer func() {
		_ = s.locks.ReleaseTripLock(ctx, tripID)
	}()

	var assigned *domain.Trip

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		trip, err := tx.Trips().GetByID(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.Status != domain.TripStatusPending {
			return ErrTripNoLongerAvailable
		}

		driver, err := tx.Drivers().GetByID(ctx, driverID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if !s.subs.CanAcceptWork(driver, now) {
			return ErrSubscriptionRequired
		}
		if driver.Status != domain.DriverStatusAvailable {
			return ErrDriverNotAvailable
		}

		vehicle, err := tx.Vehicles().GetReadyByDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrNoActiveVehicle
		}

		// A direct accept outruns any open bidding; pending bids lose.
		bids, err := tx.Bids().ListPendingByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		for _, bid := range bids {
			bid.Status = domain.BidStatusRejected
			bid.ResolvedAt = now
			if err := tx.Bids().Update(ctx, bid); err != nil {
				return err
			}
		}

		trip.Status = domain.TripStatusAssigned
		trip.DriverID = driver.ID
		trip.VehicleID = vehicle.ID
		trip.FinalFare = trip.EstimatedFare
		trip.AssignedAt = now
		if err := tx.Trips().Update(ctx, trip); err != nil {
			return err
		}

		if err := tx.Drivers().UpdateStatus(ctx, driver.ID, domain.DriverStatusOnTrip); err != nil {
			return err
		}

		assigned = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.locations.RemovePendingTrip(ctx, assigned.ID); err != nil {
		log.Printf("remove trip %s from pending index failed: %v", assigned.ID, err)
	}

	s.publishTripEvent(assigned, EventTripAssigned)

	return assigned, nil
}

// ActorRole identifies who requests a trip status change.
type ActorRole string

const (
	RoleRider  ActorRole = "RIDER"
	RoleDriver ActorRole = "DRIVER"
)

// UpdateStatusRequest contains the parameters for a trip status change.
type UpdateStatusRequest struct {
	TripID    string
	ActorID   string
	Role      ActorRole
	NewStatus domain.TripStatus
	Reason    string
}

// UpdateStatus advances a trip along its lifecycle. Only the edges
// assigned -> in_progress -> completed and * -> cancelled are reachable
// here; anything else fails with ErrInvalidTransition. Terminal transitions
// release the driver back to AVAILABLE unless the driver independently
// changed state in the meantime.
func (s *TripService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.ActorID == "" {
		if req.Role == RoleDriver {
			return nil, ErrInvalidDriverID
		}
		return nil, ErrInvalidRiderID
	}

	switch req.NewStatus {
	case domain.TripStatusInProgress, domain.TripStatusCompleted, domain.TripStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	if req.NewStatus == domain.TripStatusCancelled && strings.TrimSpace(req.Reason) == "" {
		return nil, ErrCancelReasonRequired
	}

	var (
		updated    *domain.Trip
		wasPending bool
		released   *domain.Driver
	)

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		trip, err := tx.Trips().GetByID(ctx, req.TripID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		wasPending = trip.Status == domain.TripStatusPending
		released = nil

		switch req.NewStatus {
		case domain.TripStatusInProgress:
			if trip.Status != domain.TripStatusAssigned {
				return ErrInvalidTransition
			}
			if req.Role != RoleDriver || req.ActorID != trip.DriverID {
				return ErrNotAssignedDriver
			}
			trip.StartedAt = now

		case domain.TripStatusCompleted:
			if trip.Status != domain.TripStatusInProgress {
				return ErrInvalidTransition
			}
			if req.Role != RoleDriver || req.ActorID != trip.DriverID {
				return ErrNotAssignedDriver
			}
			trip.CompletedAt = now

		case domain.TripStatusCancelled:
			if trip.Status.IsTerminal() {
				return ErrInvalidTransition
			}
			switch req.Role {
			case RoleRider:
				if req.ActorID != trip.RiderID {
					return ErrNotTripRider
				}
			case RoleDriver:
				if trip.DriverID == "" || req.ActorID != trip.DriverID {
					return ErrNotAssignedDriver
				}
			default:
				return ErrInvalidTransition
			}
			trip.CancelledAt = now
			trip.CancelReason = strings.TrimSpace(req.Reason)
		}

		trip.Status = req.NewStatus
		if err := tx.Trips().Update(ctx, trip); err != nil {
			return err
		}

		if req.NewStatus.IsTerminal() && trip.DriverID != "" {
			driver, err := tx.Drivers().GetByID(ctx, trip.DriverID)
			if err != nil {
				return err
			}

			if req.NewStatus == domain.TripStatusCompleted {
				driver.TripCount++
			}

			// Release the driver only if still on this trip; a concurrent
			// off-duty or suspension wins.
			if driver.Status == domain.DriverStatusOnTrip {
				driver.Status = domain.DriverStatusAvailable
				released = driver
			}

			if err := tx.Drivers().Update(ctx, driver); err != nil {
				return err
			}
		}

		updated = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasPending && updated.Status == domain.TripStatusCancelled {
		if err := s.locations.RemovePendingTrip(ctx, updated.ID); err != nil {
			log.Printf("remove trip %s from pending index failed: %v", updated.ID, err)
		}
	}

	s.publishTripEvent(updated, EventTripStatus)
	if released != nil {
		s.publish(DriverTopic(released.ID), Event{
			Type: EventDriverStatus,
			Data: map[string]any{
				"driver_id": released.ID,
				"status":    released.Status,
			},
			At: s.clock.Now(),
		})
	}

	return updated, nil
}

func (s *TripService) validateCreateRequest(req CreateTripRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}

	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return ErrInvalidPickupLocation
	}

	if !isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLng) {
		return ErrInvalidDestinationLocation
	}

	if req.PassengerCount <= 0 {
		return ErrInvalidPassengerCount
	}

	return nil
}

func (s *TripService) publishTripEvent(trip *domain.Trip, eventType string) {
	event := Event{
		Type: eventType,
		Data: map[string]any{
			"trip_id":    trip.ID,
			"status":     trip.Status,
			"driver_id":  trip.DriverID,
			"final_fare": trip.FinalFare,
		},
		At: s.clock.Now(),
	}

	s.publish(TripTopic(trip.ID), event)
	s.publish(UserTopic(trip.RiderID), event)
	if trip.DriverID != "" {
		s.publish(DriverTopic(trip.DriverID), event)
	}
}

func (s *TripService) publish(topic string, event Event) {
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("publish %s to %s failed: %v", event.Type, topic, err)
	}
}
