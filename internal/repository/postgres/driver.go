package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"farebid/internal/domain"
	"farebid/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

const driverColumns = `
	id, user_id, COALESCE(name, ''), COALESCE(phone, ''), status,
	lat, lng, location_updated_at, active_vehicle_id,
	subscription_expiry, rating, trip_count, wallet_balance
`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, user_id, name, phone, status, lat, lng, location_updated_at,
			active_vehicle_id, subscription_expiry, rating, trip_count, wallet_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.UserID,
		driver.Name,
		driver.Phone,
		driver.Status,
		driver.Lat,
		driver.Lng,
		nullTime(driver.LocationUpdatedAt),
		nullString(driver.ActiveVehicleID),
		nullTime(driver.SubscriptionExpiry),
		driver.Rating,
		driver.TripCount,
		driver.WalletBalance,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return driver, nil
}

// GetByPhone retrieves a driver by phone number.
func (r *DriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE phone = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return driver, nil
}

// ListByStatus retrieves all drivers in the given status.
func (r *DriverRepository) ListByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE status = $1 ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDrivers(rows)
}

// ListExpiringBefore retrieves drivers whose subscription expiry falls in
// the half-open interval [now, before).
func (r *DriverRepository) ListExpiringBefore(ctx context.Context, now, before time.Time) ([]*domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + ` FROM drivers
		WHERE subscription_expiry >= $1 AND subscription_expiry < $2
		ORDER BY subscription_expiry
	`

	rows, err := r.q.QueryContext(ctx, query, now, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDrivers(rows)
}

// Update updates an existing driver.
func (r *DriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	query := `
		UPDATE drivers
		SET name = $1, phone = $2, status = $3, lat = $4, lng = $5,
		    location_updated_at = $6, active_vehicle_id = $7,
		    subscription_expiry = $8, rating = $9, trip_count = $10,
		    wallet_balance = $11
		WHERE id = $12
	`

	result, err := r.q.ExecContext(ctx, query,
		driver.Name,
		driver.Phone,
		driver.Status,
		driver.Lat,
		driver.Lng,
		nullTime(driver.LocationUpdatedAt),
		nullString(driver.ActiveVehicleID),
		nullTime(driver.SubscriptionExpiry),
		driver.Rating,
		driver.TripCount,
		driver.WalletBalance,
		driver.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var locationUpdatedAt, subscriptionExpiry sql.NullTime
	var activeVehicleID sql.NullString

	err := row.Scan(
		&driver.ID,
		&driver.UserID,
		&driver.Name,
		&driver.Phone,
		&driver.Status,
		&driver.Lat,
		&driver.Lng,
		&locationUpdatedAt,
		&activeVehicleID,
		&subscriptionExpiry,
		&driver.Rating,
		&driver.TripCount,
		&driver.WalletBalance,
	)
	if err != nil {
		return nil, err
	}

	if locationUpdatedAt.Valid {
		driver.LocationUpdatedAt = locationUpdatedAt.Time
	}
	if subscriptionExpiry.Valid {
		driver.SubscriptionExpiry = subscriptionExpiry.Time
	}
	driver.ActiveVehicleID = activeVehicleID.String

	return &driver, nil
}

func scanDrivers(rows *sql.Rows) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
