package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"farebid/internal/domain"
	"farebid/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

const tripColumns = `
	id, rider_id, pickup_lat, pickup_lng, pickup_address,
	destination_lat, destination_lng, destination_address,
	vehicle_class, passenger_count, distance_km, estimated_fare, final_fare,
	driver_id, vehicle_id, status, created_at, assigned_at, started_at,
	completed_at, cancelled_at, cancel_reason
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.RiderID,
		trip.PickupLat,
		trip.PickupLng,
		trip.PickupAddress,
		trip.DestinationLat,
		trip.DestinationLng,
		trip.DestinationAddress,
		trip.VehicleClass,
		trip.PassengerCount,
		trip.DistanceKm,
		trip.EstimatedFare,
		trip.FinalFare,
		nullString(trip.DriverID),
		nullString(trip.VehicleID),
		trip.Status,
		trip.CreatedAt,
		nullTime(trip.AssignedAt),
		nullTime(trip.StartedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.CancelReason,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetByIDs retrieves the trips with the given IDs.
func (r *TripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ANY($1)`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// ListByStatus retrieves trips in the given status, newest first.
func (r *TripRepository) ListByStatus(ctx context.Context, status domain.TripStatus, limit int) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTrips(rows)
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET final_fare = $1, driver_id = $2, vehicle_id = $3, status = $4,
		    assigned_at = $5, started_at = $6, completed_at = $7,
		    cancelled_at = $8, cancel_reason = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.FinalFare,
		nullString(trip.DriverID),
		nullString(trip.VehicleID),
		trip.Status,
		nullTime(trip.AssignedAt),
		nullTime(trip.StartedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.CancelReason,
		trip.ID,
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

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, vehicleID sql.NullString
	var assignedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&trip.PickupLat,
		&trip.PickupLng,
		&trip.PickupAddress,
		&trip.DestinationLat,
		&trip.DestinationLng,
		&trip.DestinationAddress,
		&trip.VehicleClass,
		&trip.PassengerCount,
		&trip.DistanceKm,
		&trip.EstimatedFare,
		&trip.FinalFare,
		&driverID,
		&vehicleID,
		&trip.Status,
		&trip.CreatedAt,
		&assignedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&trip.CancelReason,
	)
	if err != nil {
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.VehicleID = vehicleID.String
	if assignedAt.Valid {
		trip.AssignedAt = assignedAt.Time
	}
	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func scanTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
