package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"farebid/internal/domain"
	"farebid/internal/redis"
	"farebid/internal/repository"
)

// acceptLockTTL bounds how long a trip's accept lock may be held. The
// serializable transaction still re-checks trip status, so a lost lock
// cannot produce two winners.
const acceptLockTTL = 10 * time.Second

// BidConfig contains the bidding policy parameters.
type BidConfig struct {
	// FloorRatio and CeilingRatio bound a bid to a band around the trip's
	// estimated fare. A bid of estimate*FloorRatio or estimate*CeilingRatio
	// is still accepted.
	FloorRatio   float64
	CeilingRatio float64
}

// DefaultBidConfig returns the default bidding policy.
func DefaultBidConfig() BidConfig {
	return BidConfig{
		FloorRatio:   0.5,
		CeilingRatio: 1.5,
	}
}

// BidService accepts fare proposals from eligible drivers and resolves
// exactly one winner per trip.
type BidService struct {
	store     repository.Store
	subs      *SubscriptionService
	locations redis.LocationStoreInterface
	locks     redis.LockStoreInterface
	publisher StatusPublisher
	clock     Clock
	cfg       BidConfig
}

// NewBidService creates a new BidService.
func NewBidService(
	store repository.Store,
	subs *SubscriptionService,
	locations redis.LocationStoreInterface,
	locks redis.LockStoreInterface,
	publisher StatusPublisher,
	clock Clock,
	cfg BidConfig,
) *BidService {
	return &BidService{
		store:     store,
		subs:      subs,
		locations: locations,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// SubmitBidRequest contains the parameters for submitting a bid.
type SubmitBidRequest struct {
	TripID     string
	DriverID   string
	Fare       float64
	Message    string
	EtaMinutes int
}

// SubmitBid creates a pending bid by an eligible driver on a pending trip.
func (s *BidService) SubmitBid(ctx context.Context, req SubmitBidRequest) (*domain.Bid, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	if req.Fare <= 0 {
		return nil, ErrInvalidFare
	}

	driver, err := s.store.Drivers().GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if !s.subs.CanAcceptWork(driver, s.clock.Now()) {
		return nil, ErrSubscriptionRequired
	}

	vehicle, err := s.store.Vehicles().GetReadyByDriver(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrNoActiveVehicle
	}

	trip, err := s.store.Trips().GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusPending {
		return nil, ErrTripNotBiddable
	}

	if req.Fare < trip.EstimatedFare*s.cfg.FloorRatio || req.Fare > trip.EstimatedFare*s.cfg.CeilingRatio {
		return nil, ErrBidOutOfRange
	}

	bid := &domain.Bid{
		ID:         uuid.New().String(),
		TripID:     trip.ID,
		DriverID:   driver.ID,
		VehicleID:  vehicle.ID,
		Fare:       req.Fare,
		Message:    req.Message,
		EtaMinutes: req.EtaMinutes,
		Status:     domain.BidStatusPending,
		CreatedAt:  s.clock.Now(),
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		// Re-check inside the transaction so the one-pending-bid-per-driver
		// invariant holds under concurrent submissions.
		current, err := tx.Trips().GetByID(ctx, trip.ID)
		if err != nil {
			return err
		}
		if current.Status != domain.TripStatusPending {
			return ErrTripNotBiddable
		}

		existing, err := tx.Bids().GetPendingByTripAndDriver(ctx, trip.ID, driver.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateBid
		}

		return tx.Bids().Create(ctx, bid)
	})
	if err != nil {
		return nil, err
	}

	s.publish(TripTopic(trip.ID), Event{
		Type: EventBidSubmitted,
		Data: map[string]any{
			"bid_id":      bid.ID,
			"trip_id":     bid.TripID,
			"driver_id":   bid.DriverID,
			"fare":        bid.Fare,
			"eta_minutes": bid.EtaMinutes,
		},
		At: bid.CreatedAt,
	})

	return bid, nil
}

// ListBids returns a trip's pending bids, cheapest first, for the trip's
// rider. Nobody else may list them.
func (s *BidService) ListBids(ctx context.Context, tripID, requesterID string) ([]*domain.Bid, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if requesterID == "" {
		return nil, ErrInvalidRiderID
	}

	trip, err := s.store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.RiderID != requesterID {
		return nil, ErrNotTripRider
	}

	return s.store.Bids().ListPendingByTrip(ctx, tripID)
}

// AcceptBidRequest contains the parameters for accepting a bid.
type AcceptBidRequest struct {
	BidID   string
	RiderID string
}

// AcceptBidResult contains the outcome of a successful bid acceptance.
type AcceptBidResult struct {
	Trip *domain.Trip
	Bid  *domain.Bid
}

// AcceptBid resolves the bidding for a trip in one serializable unit: the
// winning bid becomes ACCEPTED, every other pending bid becomes REJECTED,
// the trip becomes ASSIGNED with the bid's fare, and the driver moves to
// ON_TRIP. When two accepts race on one trip, exactly one succeeds; the
// loser fails with ErrTripNoLongerBiddable.
func (s *BidService) AcceptBid(ctx context.Context, req AcceptBidRequest) (*AcceptBidResult, error) {
	if req.BidID == "" {
		return nil, ErrInvalidBidID
	}

	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}

	bid, err := s.store.Bids().GetByID(ctx, req.BidID)
	if err != nil {
		return nil, err
	}

	trip, err := s.store.Trips().GetByID(ctx, bid.TripID)
	if err != nil {
		return nil, err
	}

	if trip.RiderID != req.RiderID {
		return nil, ErrNotTripRider
	}

	locked, err := s.locks.AcquireTripLock(ctx, trip.ID, acceptLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrTripNoLongerBiddable
	}
	defer func() {
		_ = s.locks.ReleaseTripLock(ctx, trip.ID)
	}()

	var result AcceptBidResult

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		// Every status involved is re-read inside the transaction: the race
		// loser must observe the winner's committed writes and abort before
		// mutating anything.
		trip, err := tx.Trips().GetByID(ctx, bid.TripID)
		if err != nil {
			return err
		}
		if trip.Status != domain.TripStatusPending {
			return ErrTripNoLongerBiddable
		}

		winner, err := tx.Bids().GetByID(ctx, bid.ID)
		if err != nil {
			return err
		}
		if winner.Status != domain.BidStatusPending {
			return ErrTripNoLongerBiddable
		}

		driver, err := tx.Drivers().GetByID(ctx, winner.DriverID)
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

		vehicle, err := tx.Vehicles().GetReadyByDriver(ctx, driver.ID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrNoActiveVehicle
		}

		winner.Status = domain.BidStatusAccepted
		winner.ResolvedAt = now
		if err := tx.Bids().Update(ctx, winner); err != nil {
			return err
		}

		losers, err := tx.Bids().ListPendingByTrip(ctx, trip.ID)
		if err != nil {
			return err
		}
		for _, loser := range losers {
			if loser.ID == winner.ID {
				continue
			}
			loser.Status = domain.BidStatusRejected
			loser.ResolvedAt = now
			if err := tx.Bids().Update(ctx, loser); err != nil {
				return err
			}
		}

		trip.Status = domain.TripStatusAssigned
		trip.DriverID = driver.ID
		trip.VehicleID = vehicle.ID
		trip.FinalFare = winner.Fare
		trip.AssignedAt = now
		if err := tx.Trips().Update(ctx, trip); err != nil {
			return err
		}

		if err := tx.Drivers().UpdateStatus(ctx, driver.ID, domain.DriverStatusOnTrip); err != nil {
			return err
		}

		result.Trip = trip
		result.Bid = winner
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.locations.RemovePendingTrip(ctx, result.Trip.ID); err != nil {
		log.Printf("remove trip %s from pending index failed: %v", result.Trip.ID, err)
	}

	s.publish(TripTopic(result.Trip.ID), Event{
		Type: EventTripAssigned,
		Data: map[string]any{
			"trip_id":    result.Trip.ID,
			"driver_id":  result.Trip.DriverID,
			"vehicle_id": result.Trip.VehicleID,
			"final_fare": result.Trip.FinalFare,
		},
		At: result.Trip.AssignedAt,
	})
	s.publish(DriverTopic(result.Trip.DriverID), Event{
		Type: EventTripAssigned,
		Data: map[string]any{
			"trip_id":    result.Trip.ID,
			"final_fare": result.Trip.FinalFare,
		},
		At: result.Trip.AssignedAt,
	})

	return &result, nil
}

func (s *BidService) publish(topic string, event Event) {
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("publish %s to %s failed: %v", event.Type, topic, err)
	}
}
