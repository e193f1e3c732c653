package repository

import (
	"context"

	"farebid/internal/domain"
)

// FeeRepository defines the persistence operations for daily fees.
type FeeRepository interface {
	// Create persists a new daily fee.
	Create(ctx context.Context, fee *domain.DailyFee) error

	// GetByID retrieves a fee by ID.
	GetByID(ctx context.Context, id string) (*domain.DailyFee, error)

	// ListByDriver retrieves all fees for a driver ordered by fee date
	// descending.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyFee, error)
}
