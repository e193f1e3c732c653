package postgres

import (
	"context"
	"database/sql"
	"errors"

	"farebid/internal/domain"
	"farebid/internal/repository"
)

// BidRepository is a PostgreSQL implementation of repository.BidRepository.
type BidRepository struct {
	q Querier
}

// NewBidRepository creates a new PostgreSQL bid repository.
func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{q: db}
}

const bidColumns = `id, trip_id, driver_id, vehicle_id, fare, message, eta_minutes, status, created_at, resolved_at`

// Create persists a new bid.
func (r *BidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	query := `
		INSERT INTO bids (` + bidColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		bid.ID,
		bid.TripID,
		bid.DriverID,
		bid.VehicleID,
		bid.Fare,
		bid.Message,
		bid.EtaMinutes,
		bid.Status,
		bid.CreatedAt,
		nullTime(bid.ResolvedAt),
	)

	return err
}

// GetByID retrieves a bid by ID.
func (r *BidRepository) GetByID(ctx context.Context, id string) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	bid, err := scanBid(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return bid, nil
}

// ListPendingByTrip retrieves all pending bids for a trip ordered by
// ascending fare, ties broken by earliest creation time.
func (r *BidRepository) ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Bid, error) {
	query := `
		SELECT ` + bidColumns + ` FROM bids
		WHERE trip_id = $1 AND status = $2
		ORDER BY fare ASC, created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID, domain.BidStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}

	return bids, rows.Err()
}

// GetPendingByTripAndDriver retrieves the pending bid a driver holds on a
// trip. Returns nil if the driver has no pending bid on the trip.
func (r *BidRepository) GetPendingByTripAndDriver(ctx context.Context, tripID, driverID string) (*domain.Bid, error) {
	query := `
		SELECT ` + bidColumns + ` FROM bids
		WHERE trip_id = $1 AND driver_id = $2 AND status = $3
		LIMIT 1
	`

	bid, err := scanBid(r.q.QueryRowContext(ctx, query, tripID, driverID, domain.BidStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return bid, nil
}

// Update updates an existing bid.
func (r *BidRepository) Update(ctx context.Context, bid *domain.Bid) error {
	query := `
		UPDATE bids
		SET fare = $1, message = $2, eta_minutes = $3, status = $4, resolved_at = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		bid.Fare,
		bid.Message,
		bid.EtaMinutes,
		bid.Status,
		nullTime(bid.ResolvedAt),
		bid.ID,
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

func scanBid(row rowScanner) (*domain.Bid, error) {
	var bid domain.Bid
	var resolvedAt sql.NullTime

	err := row.Scan(
		&bid.ID,
		&bid.TripID,
		&bid.DriverID,
		&bid.VehicleID,
		&bid.Fare,
		&bid.Message,
		&bid.EtaMinutes,
		&bid.Status,
		&bid.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if resolvedAt.Valid {
		bid.ResolvedAt = resolvedAt.Time
	}

	return &bid, nil
}

// Ensure BidRepository implements repository.BidRepository.
var _ repository.BidRepository = (*BidRepository)(nil)
