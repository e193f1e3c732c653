package repository

import (
	"context"
	"time"

	"farebid/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// ListByStatus retrieves all drivers in the given status.
	ListByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error)

	// ListExpiringBefore retrieves drivers whose subscription expiry falls
	// in the half-open interval [now, before).
	ListExpiringBefore(ctx context.Context, now, before time.Time) ([]*domain.Driver, error)

	// Update updates an existing driver.
	Update(ctx context.Context, driver *domain.Driver) error

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}
