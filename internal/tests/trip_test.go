package tests

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// ──────────────────────────────────────────────
// TRIP LIFECYCLE
// ──────────────────────────────────────────────

type tripFixture struct {
	trips     *service.TripService
	store     *MockStore
	locations *MockLocationStore
	locks     *MockLockStore
	clock     *MockClock
	publisher *MockPublisher
}

func newTripFixture(now time.Time) *tripFixture {
	store := NewMockStore()
	locations := NewMockLocationStore()
	locks := NewMockLockStore()
	clock := NewMockClock(now)
	publisher := NewMockPublisher()
	subs := service.NewSubscriptionService(store, publisher, clock, service.DefaultSubscriptionConfig())
	estimator := service.NewFareEstimator(service.DefaultFareConfig())
	trips := service.NewTripService(store, subs, estimator, locations, locks, publisher, clock, service.DefaultTripConfig())
	return &tripFixture{
		trips:     trips,
		store:     store,
		locations: locations,
		locks:     locks,
		clock:     clock,
		publisher: publisher,
	}
}

func (f *tripFixture) addRider(id string) {
	f.store.UserRepo.AddUser(&domain.User{ID: id, Name: "Rider", Phone: "555-" + id})
}

func (f *tripFixture) createTrip(t *testing.T, riderID string) *domain.Trip {
	t.Helper()
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripRequest{
		RiderID:        riderID,
		PickupLat:      0, PickupLng: 0,
		DestinationLat: 0, DestinationLng: 1,
		PassengerCount: 1,
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

func TestCreateTrip_EstimatesOnce(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")

	trip := f.createTrip(t, "rider-1")

	// One degree of longitude at the equator is about 111.19 km.
	if math.Abs(trip.DistanceKm-111.19) > 0.5 {
		t.Errorf("expected distance ≈111.19 km, got %v", trip.DistanceKm)
	}

	// base 2.0 + 111.19 * 0.75, well above the minimum fare
	wantFare := 2.0 + trip.DistanceKm*0.75
	if math.Abs(trip.EstimatedFare-wantFare) > 1e-9 {
		t.Errorf("expected fare %v, got %v", wantFare, trip.EstimatedFare)
	}
	if trip.Status != domain.TripStatusPending {
		t.Errorf("expected PENDING, got %s", trip.Status)
	}
	if trip.VehicleClass != "STANDARD" {
		t.Errorf("expected default vehicle class, got %q", trip.VehicleClass)
	}
	if !f.locations.HasPendingTrip(trip.ID) {
		t.Error("trip should be in the pending geo index")
	}
	if f.publisher.CountByType(service.EventTripCreated) != 1 {
		t.Error("expected a trip created event")
	}
}

func TestCreateTrip_ShortHopGetsMinimumFare(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")

	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripRequest{
		RiderID:        "rider-1",
		PickupLat:      0, PickupLng: 0,
		DestinationLat: 0.001, DestinationLng: 0,
		PassengerCount: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.EstimatedFare != 5.0 {
		t.Errorf("expected minimum fare 5.0, got %v", trip.EstimatedFare)
	}
}

func TestCreateTrip_Validation(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	ctx := context.Background()

	if _, err := f.trips.CreateTrip(ctx, service.CreateTripRequest{
		RiderID: "rider-1", PickupLat: 99, PassengerCount: 1,
	}); !errors.Is(err, service.ErrInvalidPickupLocation) {
		t.Errorf("expected ErrInvalidPickupLocation, got %v", err)
	}

	if _, err := f.trips.CreateTrip(ctx, service.CreateTripRequest{
		RiderID: "rider-1", DestinationLng: 200, PassengerCount: 1,
	}); !errors.Is(err, service.ErrInvalidDestinationLocation) {
		t.Errorf("expected ErrInvalidDestinationLocation, got %v", err)
	}

	if _, err := f.trips.CreateTrip(ctx, service.CreateTripRequest{
		RiderID: "rider-1", PassengerCount: 0,
	}); !errors.Is(err, service.ErrInvalidPassengerCount) {
		t.Errorf("expected ErrInvalidPassengerCount, got %v", err)
	}
}

func TestListNearbyPending_RequiresKnownLocation(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusAvailable,
	})

	_, err := f.trips.ListNearbyPending(context.Background(), "driver-1", 0)
	if !errors.Is(err, service.ErrNoDriverLocation) {
		t.Fatalf("expected ErrNoDriverLocation, got %v", err)
	}
}

func TestListNearbyPending_FiltersStaleIndexEntries(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	f.store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusAvailable,
		Lat: 0, Lng: 0, LocationUpdatedAt: baseTime,
	})

	pending := f.createTrip(t, "rider-1")
	stale := f.createTrip(t, "rider-1")

	// The second trip got assigned but the geo index lags behind.
	assigned := f.store.TripRepo.GetTrip(stale.ID)
	assigned.Status = domain.TripStatusAssigned

	trips, err := f.trips.ListNearbyPending(context.Background(), "driver-1", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(trips))
	}
	if trips[0].ID != pending.ID {
		t.Errorf("expected %s, got %s", pending.ID, trips[0].ID)
	}
}

func TestAcceptDirect_AssignsAtEstimate(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")

	got, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.TripStatusAssigned {
		t.Errorf("expected ASSIGNED, got %s", got.Status)
	}
	if got.FinalFare != trip.EstimatedFare {
		t.Errorf("direct accept should use the estimate, got %v", got.FinalFare)
	}
	if got.DriverID != "driver-1" {
		t.Errorf("expected driver-1, got %s", got.DriverID)
	}
	if f.store.DriverRepo.GetDriver("driver-1").Status != domain.DriverStatusOnTrip {
		t.Error("driver should be ON_TRIP")
	}
	if f.locations.HasPendingTrip(trip.ID) {
		t.Error("trip should be removed from the pending geo index")
	}
}

func TestAcceptDirect_RejectsOpenBids(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")
	f.store.BidRepo.AddBid(&domain.Bid{
		ID: "bid-1", TripID: trip.ID, DriverID: "driver-2",
		Fare: 9, Status: domain.BidStatusPending, CreatedAt: baseTime,
	})

	if _, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.store.BidRepo.GetBid("bid-1").Status; got != domain.BidStatusRejected {
		t.Errorf("open bid should be REJECTED, got %s", got)
	}
}

func TestAcceptDirect_ConcurrentExactlyOneWinner(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	trip := f.createTrip(t, "rider-1")

	const n = 4
	for i := 0; i < n; i++ {
		addEligibleDriver(f.store, fmt.Sprintf("driver-%d", i), domain.DriverStatusAvailable)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.trips.AcceptDirect(context.Background(), trip.ID, fmt.Sprintf("driver-%d", i))
		}(i)
	}
	wg.Wait()

	successes := 0
	for i, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrTripNoLongerAvailable):
		default:
			t.Errorf("accept %d: unexpected error %v", i, err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful accept, got %d", successes)
	}
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")
	if _, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	started, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "driver-1", Role: service.RoleDriver,
		NewStatus: domain.TripStatusInProgress,
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.StartedAt.IsZero() {
		t.Error("StartedAt should be stamped")
	}

	f.clock.Advance(20 * time.Minute)

	completed, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "driver-1", Role: service.RoleDriver,
		NewStatus: domain.TripStatusCompleted,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("CompletedAt should be stamped")
	}

	driver := f.store.DriverRepo.GetDriver("driver-1")
	if driver.Status != domain.DriverStatusAvailable {
		t.Errorf("driver should be released to AVAILABLE, got %s", driver.Status)
	}
	if driver.TripCount != 1 {
		t.Errorf("expected trip count 1, got %d", driver.TripCount)
	}
}

func TestUpdateStatus_CannotCompleteBeforeStart(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")
	if _, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "driver-1", Role: service.RoleDriver,
		NewStatus: domain.TripStatusCompleted,
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatus_OnlyAssignedDriverMayStart(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)
	addEligibleDriver(f.store, "driver-2", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")
	if _, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "driver-2", Role: service.RoleDriver,
		NewStatus: domain.TripStatusInProgress,
	})
	if !errors.Is(err, service.ErrNotAssignedDriver) {
		t.Fatalf("expected ErrNotAssignedDriver, got %v", err)
	}
}

func TestUpdateStatus_CancelRequiresReason(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	trip := f.createTrip(t, "rider-1")

	_, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "rider-1", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "   ",
	})
	if !errors.Is(err, service.ErrCancelReasonRequired) {
		t.Fatalf("expected ErrCancelReasonRequired, got %v", err)
	}
}

func TestUpdateStatus_RiderCancelsPendingTrip(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	trip := f.createTrip(t, "rider-1")

	// Only the trip's rider may cancel as RIDER.
	if _, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "someone-else", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "changed my mind",
	}); !errors.Is(err, service.ErrNotTripRider) {
		t.Fatalf("expected ErrNotTripRider, got %v", err)
	}

	got, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "rider-1", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "changed my mind",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.TripStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", got.Status)
	}
	if got.CancelReason != "changed my mind" {
		t.Errorf("unexpected reason %q", got.CancelReason)
	}
	if f.locations.HasPendingTrip(trip.ID) {
		t.Error("cancelled pending trip should leave the geo index")
	}
}

func TestUpdateStatus_TerminalTripsAreImmutable(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	trip := f.createTrip(t, "rider-1")

	if _, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "rider-1", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "no longer needed",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "rider-1", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "again",
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatus_CancelKeepsIndependentDriverState(t *testing.T) {
	t.Parallel()

	f := newTripFixture(baseTime)
	f.addRider("rider-1")
	addEligibleDriver(f.store, "driver-1", domain.DriverStatusAvailable)

	trip := f.createTrip(t, "rider-1")
	if _, err := f.trips.AcceptDirect(context.Background(), trip.ID, "driver-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The driver got suspended by the sweep mid-trip; a cancellation must
	// not resurrect them to AVAILABLE.
	f.store.DriverRepo.GetDriver("driver-1").Status = domain.DriverStatusSuspended

	if _, err := f.trips.UpdateStatus(context.Background(), service.UpdateStatusRequest{
		TripID: trip.ID, ActorID: "rider-1", Role: service.RoleRider,
		NewStatus: domain.TripStatusCancelled, Reason: "waited too long",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := f.store.DriverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusSuspended {
		t.Errorf("driver should stay SUSPENDED, got %s", got)
	}
}

func TestFareEstimate_Deterministic(t *testing.T) {
	t.Parallel()

	estimator := service.NewFareEstimator(service.DefaultFareConfig())

	d1, f1 := estimator.Estimate(40.7128, -74.0060, 40.7580, -73.9855)
	d2, f2 := estimator.Estimate(40.7128, -74.0060, 40.7580, -73.9855)
	if d1 != d2 || f1 != f2 {
		t.Error("estimate must be deterministic for identical inputs")
	}

	// Symmetric in direction.
	d3, _ := estimator.Estimate(40.7580, -73.9855, 40.7128, -74.0060)
	if math.Abs(d1-d3) > 1e-9 {
		t.Errorf("distance should be symmetric: %v vs %v", d1, d3)
	}
}
