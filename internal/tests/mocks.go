package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"farebid/internal/domain"
	"farebid/internal/redis"
	"farebid/internal/repository"
	"farebid/internal/service"
)

// ──────────────────────────────────────────────
// MOCK STORE
// ──────────────────────────────────────────────

// MockStore is an in-memory implementation of repository.Store. WithinTx
// serializes transaction bodies with a mutex, which matches the
// serializable isolation the services assume.
type MockStore struct {
	txMu sync.Mutex

	TripRepo    *MockTripRepository
	BidRepo     *MockBidRepository
	DriverRepo  *MockDriverRepository
	VehicleRepo *MockVehicleRepository
	FeeRepo     *MockFeeRepository
	UserRepo    *MockUserRepository

	// Error injection
	WithinTxError error

	// Counters
	WithinTxCallCount int32
}

// NewMockStore creates a new mock store with empty repositories.
func NewMockStore() *MockStore {
	return &MockStore{
		TripRepo:    NewMockTripRepository(),
		BidRepo:     NewMockBidRepository(),
		DriverRepo:  NewMockDriverRepository(),
		VehicleRepo: NewMockVehicleRepository(),
		FeeRepo:     NewMockFeeRepository(),
		UserRepo:    NewMockUserRepository(),
	}
}

func (m *MockStore) Trips() repository.TripRepository       { return m.TripRepo }
func (m *MockStore) Bids() repository.BidRepository         { return m.BidRepo }
func (m *MockStore) Drivers() repository.DriverRepository   { return m.DriverRepo }
func (m *MockStore) Vehicles() repository.VehicleRepository { return m.VehicleRepo }
func (m *MockStore) Fees() repository.FeeRepository         { return m.FeeRepo }
func (m *MockStore) Users() repository.UserRepository       { return m.UserRepo }

func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.WithinTxError != nil {
		return m.WithinTxError
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

var _ repository.Store = (*MockStore)(nil)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(ids))
	for _, id := range ids {
		if trip, ok := m.trips[id]; ok {
			copy := *trip
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) ListByStatus(ctx context.Context, status domain.TripStatus, limit int) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.Status == status {
			copy := *t
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

// GetTrip returns trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK BID REPOSITORY
// ──────────────────────────────────────────────

// MockBidRepository is a mock implementation of BidRepository.
type MockBidRepository struct {
	mu   sync.RWMutex
	bids map[string]*domain.Bid

	// Counters
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockBidRepository creates a new mock bid repository.
func NewMockBidRepository() *MockBidRepository {
	return &MockBidRepository{
		bids: make(map[string]*domain.Bid),
	}
}

// AddBid adds a bid to the mock repository.
func (m *MockBidRepository) AddBid(bid *domain.Bid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bids[bid.ID] = bid
}

func (m *MockBidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *bid
	m.bids[bid.ID] = &copy
	return nil
}

func (m *MockBidRepository) GetByID(ctx context.Context, id string) (*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bid, ok := m.bids[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *bid
	return &copy, nil
}

func (m *MockBidRepository) ListPendingByTrip(ctx context.Context, tripID string) ([]*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Bid, 0)
	for _, b := range m.bids {
		if b.TripID == tripID && b.Status == domain.BidStatusPending {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Fare != result[j].Fare {
			return result[i].Fare < result[j].Fare
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBidRepository) GetPendingByTripAndDriver(ctx context.Context, tripID, driverID string) (*domain.Bid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bids {
		if b.TripID == tripID && b.DriverID == driverID && b.Status == domain.BidStatusPending {
			copy := *b
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockBidRepository) Update(ctx context.Context, bid *domain.Bid) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bids[bid.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *bid
	m.bids[bid.ID] = &copy
	return nil
}

// GetBid returns bid for test assertions.
func (m *MockBidRepository) GetBid(id string) *domain.Bid {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bids[id]
}

// CountByStatus counts bids for a trip in the given status.
func (m *MockBidRepository) CountByStatus(tripID string, status domain.BidStatus) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bids {
		if b.TripID == tripID && b.Status == status {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters
	CreateCallCount       int32
	UpdateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) ListByStatus(ctx context.Context, status domain.DriverStatus) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0)
	for _, d := range m.drivers {
		if d.Status == status {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) ListExpiringBefore(ctx context.Context, now, before time.Time) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0)
	for _, d := range m.drivers {
		if d.SubscriptionExpiry.IsZero() {
			continue
		}
		if !d.SubscriptionExpiry.Before(now) && d.SubscriptionExpiry.Before(before) {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockDriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// GetDriver returns driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetReadyByDriver(ctx context.Context, driverID string) (*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.DriverID == driverID && v.Ready() {
			copy := *v
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockVehicleRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0)
	for _, v := range m.vehicles {
		if v.DriverID == driverID {
			copy := *v
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[vehicle.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK FEE REPOSITORY
// ──────────────────────────────────────────────

// MockFeeRepository is a mock implementation of FeeRepository.
type MockFeeRepository struct {
	mu   sync.RWMutex
	fees map[string]*domain.DailyFee

	// Counters
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockFeeRepository creates a new mock fee repository.
func NewMockFeeRepository() *MockFeeRepository {
	return &MockFeeRepository{
		fees: make(map[string]*domain.DailyFee),
	}
}

// AddFee adds a fee to the mock repository.
func (m *MockFeeRepository) AddFee(fee *domain.DailyFee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees[fee.ID] = fee
}

func (m *MockFeeRepository) Create(ctx context.Context, fee *domain.DailyFee) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *fee
	m.fees[fee.ID] = &copy
	return nil
}

func (m *MockFeeRepository) GetByID(ctx context.Context, id string) (*domain.DailyFee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fee, ok := m.fees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *fee
	return &copy, nil
}

func (m *MockFeeRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DailyFee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DailyFee, 0)
	for _, f := range m.fees {
		if f.DriverID == driverID {
			copy := *f
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FeeDate.After(result[j].FeeDate)
	})
	return result, nil
}

// CountFees returns the number of fees.
func (m *MockFeeRepository) CountFees() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fees)
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
type MockLocationStore struct {
	mu           sync.RWMutex
	drivers      map[string][2]float64
	pendingTrips map[string][2]float64

	// Counters
	UpdateDriverLocationCallCount int32
	RemovePendingTripCallCount    int32

	// Error injection
	UpdateDriverLocationError   error
	FindNearbyPendingTripsError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		drivers:      make(map[string][2]float64),
		pendingTrips: make(map[string][2]float64),
	}
}

func (m *MockLocationStore) UpdateDriverLocation(ctx context.Context, driverID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateDriverLocationCallCount, 1)
	if m.UpdateDriverLocationError != nil {
		return m.UpdateDriverLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driverID] = [2]float64{lat, lng}
	return nil
}

func (m *MockLocationStore) RemoveDriverLocation(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

func (m *MockLocationStore) AddPendingTrip(ctx context.Context, tripID string, lat, lng float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingTrips[tripID] = [2]float64{lat, lng}
	return nil
}

func (m *MockLocationStore) RemovePendingTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.RemovePendingTripCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pendingTrips, tripID)
	return nil
}

func (m *MockLocationStore) FindNearbyPendingTrips(ctx context.Context, lat, lng, radiusKm float64) ([]redis.NearbyTrip, error) {
	if m.FindNearbyPendingTripsError != nil {
		return nil, m.FindNearbyPendingTripsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all indexed trips (mock does not do real geo filtering),
	// ordered by trip ID for determinism.
	ids := make([]string, 0, len(m.pendingTrips))
	for id := range m.pendingTrips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]redis.NearbyTrip, 0, len(ids))
	for _, id := range ids {
		pos := m.pendingTrips[id]
		result = append(result, redis.NearbyTrip{TripID: id, Lat: pos[0], Lng: pos[1]})
	}
	return result, nil
}

// HasPendingTrip checks whether a trip is in the pending geo index.
func (m *MockLocationStore) HasPendingTrip(tripID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pendingTrips[tripID]
	return ok
}

// HasDriverLocation checks whether a driver is in the geo index.
func (m *MockLocationStore) HasDriverLocation(driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.drivers[driverID]
	return ok
}

var _ redis.LocationStoreInterface = (*MockLocationStore)(nil)

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time
	marks map[string]struct{}

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
		marks: make(map[string]struct{}),
	}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:trip:" + tripID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:trip:"+tripID)
	return nil
}

func (m *MockLockStore) MarkReminderSent(ctx context.Context, driverID string, expiry time.Time, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := driverID + ":" + expiry.UTC().Format(time.RFC3339)
	if _, exists := m.marks[key]; exists {
		return false, nil
	}
	m.marks[key] = struct{}{}
	return true, nil
}

var _ redis.LockStoreInterface = (*MockLockStore)(nil)

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// PublishedEvent pairs an event with the topic it was sent to.
type PublishedEvent struct {
	Topic string
	Event service.Event
}

// MockPublisher records published events for assertions.
type MockPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	// Error injection
	PublishError error
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(topic string, event service.Event) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]PublishedEvent, len(m.events))
	copy(result, m.events)
	return result
}

// CountByType counts events of the given type.
func (m *MockPublisher) CountByType(eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.events {
		if e.Event.Type == eventType {
			count++
		}
	}
	return count
}

var _ service.StatusPublisher = (*MockPublisher)(nil)

// ──────────────────────────────────────────────
// MOCK CLOCK
// ──────────────────────────────────────────────

// MockClock is a settable clock.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock creates a mock clock frozen at the given time.
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to the given time.
func (c *MockClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ service.Clock = (*MockClock)(nil)

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)
