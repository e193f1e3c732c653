package repository

import (
	"context"

	"farebid/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDs retrieves the trips with the given IDs. Missing IDs are
	// silently skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error)

	// ListByStatus retrieves trips in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.TripStatus, limit int) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error
}
