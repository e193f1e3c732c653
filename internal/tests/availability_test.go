package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// ──────────────────────────────────────────────
// DRIVER AVAILABILITY GATE
// ──────────────────────────────────────────────

func newAvailabilityFixture(now time.Time) (*service.AvailabilityService, *MockStore, *MockLocationStore, *MockClock, *MockPublisher) {
	store := NewMockStore()
	locations := NewMockLocationStore()
	clock := NewMockClock(now)
	publisher := NewMockPublisher()
	subs := service.NewSubscriptionService(store, publisher, clock, service.DefaultSubscriptionConfig())
	availability := service.NewAvailabilityService(store, subs, locations, publisher, clock)
	return availability, store, locations, clock, publisher
}

func addEligibleDriver(store *MockStore, id string, status domain.DriverStatus) {
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 id,
		Status:             status,
		SubscriptionExpiry: baseTime.Add(24 * time.Hour),
		WalletBalance:      50,
	})
	store.VehicleRepo.AddVehicle(&domain.Vehicle{
		ID:       "vehicle-" + id,
		DriverID: id,
		Class:    "STANDARD",
		Plate:    "PLATE-" + id,
		Approved: true,
		Active:   true,
	})
}

func TestGoOnline_RequiresSubscription(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 "driver-1",
		Status:             domain.DriverStatusOffDuty,
		SubscriptionExpiry: baseTime.Add(-10 * time.Hour), // past grace
	})

	_, err := availability.GoOnline(context.Background(), service.GoOnlineRequest{DriverID: "driver-1"})
	if !errors.Is(err, service.ErrSubscriptionRequired) {
		t.Fatalf("expected ErrSubscriptionRequired, got %v", err)
	}
}

func TestGoOnline_RequiresReadyVehicle(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 "driver-1",
		Status:             domain.DriverStatusOffDuty,
		SubscriptionExpiry: baseTime.Add(24 * time.Hour),
	})
	// Registered but unapproved vehicle does not count.
	store.VehicleRepo.AddVehicle(&domain.Vehicle{
		ID: "vehicle-1", DriverID: "driver-1", Approved: false, Active: true,
	})

	_, err := availability.GoOnline(context.Background(), service.GoOnlineRequest{DriverID: "driver-1"})
	if !errors.Is(err, service.ErrNoActiveVehicle) {
		t.Fatalf("expected ErrNoActiveVehicle, got %v", err)
	}
}

func TestGoOnline_DuringGraceSucceeds(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusOffDuty)
	driver := store.DriverRepo.GetDriver("driver-1")
	driver.SubscriptionExpiry = baseTime.Add(-time.Hour) // inside grace

	got, err := availability.GoOnline(context.Background(), service.GoOnlineRequest{DriverID: "driver-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.DriverStatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", got.Status)
	}
	if got.ActiveVehicleID != "vehicle-driver-1" {
		t.Errorf("expected active vehicle to be bound, got %q", got.ActiveVehicleID)
	}
}

func TestGoOnline_Idempotent(t *testing.T) {
	t.Parallel()

	availability, store, _, _, publisher := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusAvailable)

	got, err := availability.GoOnline(context.Background(), service.GoOnlineRequest{DriverID: "driver-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.DriverStatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", got.Status)
	}
	// No status event for a no-op.
	if publisher.CountByType(service.EventDriverStatus) != 0 {
		t.Errorf("expected no status events, got %d", publisher.CountByType(service.EventDriverStatus))
	}
}

func TestGoOnline_RejectedWhileOnTrip(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusOnTrip)

	_, err := availability.GoOnline(context.Background(), service.GoOnlineRequest{DriverID: "driver-1"})
	if !errors.Is(err, service.ErrTripInProgress) {
		t.Fatalf("expected ErrTripInProgress, got %v", err)
	}
}

func TestGoOffline_RemovesLocationIndex(t *testing.T) {
	t.Parallel()

	availability, store, locations, _, _ := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusAvailable)
	_ = locations.UpdateDriverLocation(context.Background(), "driver-1", 1, 1)

	got, err := availability.GoOffline(context.Background(), "driver-1", "end of shift")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.DriverStatusOffDuty {
		t.Errorf("expected OFF_DUTY, got %s", got.Status)
	}
	if locations.HasDriverLocation("driver-1") {
		t.Error("driver should be removed from the location index")
	}
}

func TestGoOffline_RejectedWhileOnTrip(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusOnTrip)

	_, err := availability.GoOffline(context.Background(), "driver-1", "")
	if !errors.Is(err, service.ErrTripInProgress) {
		t.Fatalf("expected ErrTripInProgress, got %v", err)
	}
}

func TestUpdateLocation_ValidatesCoordinates(t *testing.T) {
	t.Parallel()

	availability, store, _, _, _ := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusAvailable)

	_, err := availability.UpdateLocation(context.Background(), service.UpdateLocationRequest{
		DriverID: "driver-1", Lat: 91, Lng: 0,
	})
	if !errors.Is(err, service.ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestUpdateLocation_UpdatesRowAndIndex(t *testing.T) {
	t.Parallel()

	availability, store, locations, _, publisher := newAvailabilityFixture(baseTime)
	addEligibleDriver(store, "driver-1", domain.DriverStatusAvailable)

	got, err := availability.UpdateLocation(context.Background(), service.UpdateLocationRequest{
		DriverID: "driver-1", Lat: 40.7, Lng: -74.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Lat != 40.7 || got.Lng != -74.0 {
		t.Errorf("expected (40.7, -74.0), got (%v, %v)", got.Lat, got.Lng)
	}
	if got.LocationUpdatedAt.IsZero() {
		t.Error("LocationUpdatedAt should be stamped")
	}
	if !locations.HasDriverLocation("driver-1") {
		t.Error("driver should be in the location index")
	}
	if publisher.CountByType(service.EventDriverLocation) != 1 {
		t.Errorf("expected one location event")
	}
}

// ──────────────────────────────────────────────
// SUBSCRIPTION SWEEP
// ──────────────────────────────────────────────

func newSweepFixture(now time.Time) (*service.SweepService, *MockStore, *MockLockStore, *MockClock, *MockPublisher) {
	store := NewMockStore()
	locations := NewMockLocationStore()
	locks := NewMockLockStore()
	clock := NewMockClock(now)
	publisher := NewMockPublisher()
	subs := service.NewSubscriptionService(store, publisher, clock, service.DefaultSubscriptionConfig())
	availability := service.NewAvailabilityService(store, subs, locations, publisher, clock)
	sweeper := service.NewSweepService(store, subs, availability, locks, publisher, clock, service.DefaultSweepConfig())
	return sweeper, store, locks, clock, publisher
}

func TestSweep_SuspendsExpiredAvailableDrivers(t *testing.T) {
	t.Parallel()

	sweeper, store, _, _, _ := newSweepFixture(baseTime)

	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "expired", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(-10 * time.Hour),
	})
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "in-grace", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(-time.Hour),
	})
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "active", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(time.Hour),
	})

	result, err := sweeper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Processed != 3 {
		t.Errorf("expected 3 processed, got %d", result.Processed)
	}
	if result.Suspended != 1 {
		t.Errorf("expected 1 suspended, got %d", result.Suspended)
	}

	if got := store.DriverRepo.GetDriver("expired").Status; got != domain.DriverStatusSuspended {
		t.Errorf("expired driver should be SUSPENDED, got %s", got)
	}
	if got := store.DriverRepo.GetDriver("in-grace").Status; got != domain.DriverStatusAvailable {
		t.Errorf("grace driver should stay AVAILABLE, got %s", got)
	}
	if got := store.DriverRepo.GetDriver("active").Status; got != domain.DriverStatusAvailable {
		t.Errorf("active driver should stay AVAILABLE, got %s", got)
	}
}

func TestSweep_DoesNotTouchOnTripDrivers(t *testing.T) {
	t.Parallel()

	sweeper, store, _, _, _ := newSweepFixture(baseTime)

	// On a trip with an expired subscription: the sweep only scans
	// AVAILABLE drivers.
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusOnTrip,
		SubscriptionExpiry: baseTime.Add(-10 * time.Hour),
	})

	result, err := sweeper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 0 {
		t.Errorf("expected 0 processed, got %d", result.Processed)
	}
	if got := store.DriverRepo.GetDriver("driver-1").Status; got != domain.DriverStatusOnTrip {
		t.Errorf("on-trip driver should be untouched, got %s", got)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	t.Parallel()

	sweeper, store, _, _, publisher := newSweepFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(-10 * time.Hour),
	})

	if _, err := sweeper.SweepExpired(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := sweeper.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second pass finds no AVAILABLE drivers, so nothing happens.
	if result.Suspended != 0 {
		t.Errorf("expected 0 suspended on second pass, got %d", result.Suspended)
	}
	if publisher.CountByType(service.EventDriverStatus) != 1 {
		t.Errorf("expected exactly one status event, got %d", publisher.CountByType(service.EventDriverStatus))
	}
}

func TestSweep_RemindersDeduplicated(t *testing.T) {
	t.Parallel()

	sweeper, store, _, _, publisher := newSweepFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "soon", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(time.Hour),
	})
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "later", Status: domain.DriverStatusAvailable,
		SubscriptionExpiry: baseTime.Add(10 * time.Hour),
	})

	first, err := sweeper.SendReminders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Reminded != 1 {
		t.Fatalf("expected 1 reminded, got %d", first.Reminded)
	}

	second, err := sweeper.SendReminders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Reminded != 0 {
		t.Errorf("expected 0 reminded on second pass, got %d", second.Reminded)
	}
	if publisher.CountByType(service.EventSubscriptionReminder) != 1 {
		t.Errorf("expected one reminder event, got %d", publisher.CountByType(service.EventSubscriptionReminder))
	}
}
