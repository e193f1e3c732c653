package postgres

import (
	"context"
	"database/sql"
	"errors"

	"farebid/internal/domain"
	"farebid/internal/repository"
)

// FeeRepository is a PostgreSQL implementation of repository.FeeRepository.
type FeeRepository struct {
	q Querier
}

// NewFeeRepository creates a new PostgreSQL fee repository.
func NewFeeRepository(db *sql.DB) *FeeRepository {
	return &FeeRepository{q: db}
}

const feeColumns = `id, driver_id, amount, fee_date, paid_at, expires_at, status`

// Create persists a new daily fee.
func (r *FeeRepository) Create(ctx context.Context, fee *domain.DailyFee) error {
	query := `
		INSERT INTO daily_fees (` + feeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		fee.ID,
		fee.DriverID,
		fee.Amount,
		fee.FeeDate,
		nullTime(fee.PaidAt),
		fee.ExpiresAt,
		fee.Status,
	)

	return err
}

// GetByID retrieves a fee by ID.
func (r *FeeRepository) GetByID(ctx context.Context, id string) (*domain.DailyFee, error) {
	query := `SELECT ` + feeColumns + ` FROM daily_fees WHERE id = $1`

	fee, err := scanFee(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return fee, nil
}

// ListByDriver retrieves all fees for a driver ordered by fee date descending.
func (r *FeeRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyFee, error) {
	query := `SELECT ` + feeColumns + ` FROM daily_fees WHERE driver_id = $1 ORDER BY fee_date DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []*domain.DailyFee
	for rows.Next() {
		fee, err := scanFee(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, fee)
	}

	return fees, rows.Err()
}

func scanFee(row rowScanner) (*domain.DailyFee, error) {
	var fee domain.DailyFee
	var paidAt sql.NullTime

	err := row.Scan(
		&fee.ID,
		&fee.DriverID,
		&fee.Amount,
		&fee.FeeDate,
		&paidAt,
		&fee.ExpiresAt,
		&fee.Status,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		fee.PaidAt = paidAt.Time
	}

	return &fee, nil
}

// Ensure FeeRepository implements repository.FeeRepository.
var _ repository.FeeRepository = (*FeeRepository)(nil)
