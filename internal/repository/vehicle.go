package repository

import (
	"context"

	"farebid/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetReadyByDriver retrieves a driver's approved and active vehicle.
	// Returns nil if the driver has no ready vehicle.
	GetReadyByDriver(ctx context.Context, driverID string) (*domain.Vehicle, error)

	// ListByDriver retrieves all vehicles registered by a driver.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Vehicle, error)

	// Update updates an existing vehicle.
	Update(ctx context.Context, vehicle *domain.Vehicle) error
}
