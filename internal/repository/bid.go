package repository

import (
	"context"

	"farebid/internal/domain"
)

// BidRepository defines the persistence operations for bids.
type BidRepository interface {
	// Create persists a new bid.
	Create(ctx context.Context, bid *domain.Bid) error

	// GetByID retrieves a bid by ID.
	GetByID(ctx context.Context, id string) (*domain.Bid, error)

	// ListPendingByTrip retrieves all pending bids for a trip ordered by
	// ascending fare, ties broken by earliest creation time.
	ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Bid, error)

	// GetPendingByTripAndDriver retrieves the pending bid a driver holds on
	// a trip. Returns nil if the driver has no pending bid on the trip.
	GetPendingByTripAndDriver(ctx context.Context, tripID, driverID string) (*domain.Bid, error)

	// Update updates an existing bid.
	Update(ctx context.Context, bid *domain.Bid) error
}
