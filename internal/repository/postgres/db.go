package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"farebid/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Store is a PostgreSQL implementation of repository.Store. The zero
// querier variant runs each operation on the shared connection pool;
// WithinTx rebinds every repository to a single serializable transaction.
type Store struct {
	db *sql.DB
	q  Querier
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Trips() repository.TripRepository       { return &TripRepository{q: s.q} }
func (s *Store) Bids() repository.BidRepository         { return &BidRepository{q: s.q} }
func (s *Store) Drivers() repository.DriverRepository   { return &DriverRepository{q: s.q} }
func (s *Store) Vehicles() repository.VehicleRepository { return &VehicleRepository{q: s.q} }
func (s *Store) Fees() repository.FeeRepository         { return &FeeRepository{q: s.q} }
func (s *Store) Users() repository.UserRepository       { return &UserRepository{q: s.q} }

// WithinTx runs fn within one serializable transaction. The Store passed to
// fn routes every repository through the transaction. Serialization
// conflicts (SQLSTATE 40001) are retried a bounded number of times; fn must
// therefore derive all its decisions from reads made inside the transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	const maxAttempts = 3

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(repository.Store) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	txStore := &Store{db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)
