package repository

import "context"

// Store aggregates the repositories backed by one persistence engine and
// provides transactional execution across them.
type Store interface {
	Trips() TripRepository
	Bids() BidRepository
	Drivers() DriverRepository
	Vehicles() VehicleRepository
	Fees() FeeRepository
	Users() UserRepository

	// WithinTx runs fn against a transaction-scoped Store. All repository
	// operations performed through the argument share one serializable
	// transaction; it commits when fn returns nil and rolls back otherwise.
	// Multi-row invariants (single accepted bid, single assigned driver)
	// must re-read and re-check status columns through the argument Store
	// before writing.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
