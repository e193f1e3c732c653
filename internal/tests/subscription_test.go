package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// ──────────────────────────────────────────────
// SUBSCRIPTION LEDGER
// ──────────────────────────────────────────────

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newSubscriptionFixture(now time.Time) (*service.SubscriptionService, *MockStore, *MockClock, *MockPublisher) {
	store := NewMockStore()
	clock := NewMockClock(now)
	publisher := NewMockPublisher()
	subs := service.NewSubscriptionService(store, publisher, clock, service.DefaultSubscriptionConfig())
	return subs, store, clock, publisher
}

func TestSubscription_StatusBoundaries(t *testing.T) {
	t.Parallel()

	subs, _, _, _ := newSubscriptionFixture(baseTime)

	cases := []struct {
		name   string
		expiry time.Time
		want   domain.SubscriptionStatus
	}{
		{"never paid", time.Time{}, domain.SubscriptionExpired},
		{"expires in an hour", baseTime.Add(time.Hour), domain.SubscriptionActive},
		{"expired one hour ago", baseTime.Add(-time.Hour), domain.SubscriptionGrace},
		{"expired exactly at grace edge", baseTime.Add(-6 * time.Hour), domain.SubscriptionGrace},
		{"expired past grace", baseTime.Add(-7 * time.Hour), domain.SubscriptionExpired},
	}

	for _, tc := range cases {
		driver := &domain.Driver{ID: "driver-1", SubscriptionExpiry: tc.expiry}
		got := subs.CurrentStatus(driver, baseTime)
		if got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSubscription_CanAcceptWorkDuringGrace(t *testing.T) {
	t.Parallel()

	subs, _, _, _ := newSubscriptionFixture(baseTime)

	driver := &domain.Driver{ID: "driver-1", SubscriptionExpiry: baseTime.Add(-time.Hour)}
	if !subs.CanAcceptWork(driver, baseTime) {
		t.Error("driver in grace should be able to accept work")
	}

	driver.SubscriptionExpiry = baseTime.Add(-7 * time.Hour)
	if subs.CanAcceptWork(driver, baseTime) {
		t.Error("driver past grace should not be able to accept work")
	}
}

func TestSubscription_PaymentExtendsFromNowWhenExpired(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 "driver-1",
		Status:             domain.DriverStatusOffDuty,
		SubscriptionExpiry: baseTime.Add(-48 * time.Hour),
		WalletBalance:      100,
	})

	result, err := subs.RecordPayment(context.Background(), service.RecordPaymentRequest{
		DriverID: "driver-1",
		Days:     1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := baseTime.Add(24 * time.Hour)
	if !result.Driver.SubscriptionExpiry.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, result.Driver.SubscriptionExpiry)
	}
	if len(result.Fees) != 1 {
		t.Fatalf("expected 1 fee, got %d", len(result.Fees))
	}
	if result.Driver.WalletBalance != 95 {
		t.Errorf("expected wallet 95, got %v", result.Driver.WalletBalance)
	}
}

func TestSubscription_PaymentChainsFromFutureExpiry(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	expiry := baseTime.Add(10 * time.Hour)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 "driver-1",
		Status:             domain.DriverStatusOffDuty,
		SubscriptionExpiry: expiry,
		WalletBalance:      100,
	})

	result, err := subs.RecordPayment(context.Background(), service.RecordPaymentRequest{
		DriverID: "driver-1",
		Days:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := expiry.Add(48 * time.Hour)
	if !result.Driver.SubscriptionExpiry.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, result.Driver.SubscriptionExpiry)
	}
}

func TestSubscription_PaymentAssociativity(t *testing.T) {
	t.Parallel()

	// Paying 3 days at once must land on the same expiry as paying one day
	// three times.
	ctx := context.Background()

	subsA, storeA, _, _ := newSubscriptionFixture(baseTime)
	storeA.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusOffDuty, WalletBalance: 100,
	})
	resultA, err := subsA.RecordPayment(ctx, service.RecordPaymentRequest{DriverID: "driver-1", Days: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	subsB, storeB, _, _ := newSubscriptionFixture(baseTime)
	storeB.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusOffDuty, WalletBalance: 100,
	})
	var resultB *service.RecordPaymentResult
	for i := 0; i < 3; i++ {
		resultB, err = subsB.RecordPayment(ctx, service.RecordPaymentRequest{DriverID: "driver-1", Days: 1})
		if err != nil {
			t.Fatalf("unexpected error on payment %d: %v", i+1, err)
		}
	}

	if !resultA.Driver.SubscriptionExpiry.Equal(resultB.Driver.SubscriptionExpiry) {
		t.Errorf("bulk expiry %v != incremental expiry %v",
			resultA.Driver.SubscriptionExpiry, resultB.Driver.SubscriptionExpiry)
	}
	if storeA.FeeRepo.CountFees() != storeB.FeeRepo.CountFees() {
		t.Errorf("bulk created %d fees, incremental created %d",
			storeA.FeeRepo.CountFees(), storeB.FeeRepo.CountFees())
	}
}

func TestSubscription_PaymentInsufficientFunds(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusOffDuty, WalletBalance: 4,
	})

	_, err := subs.RecordPayment(context.Background(), service.RecordPaymentRequest{
		DriverID: "driver-1",
		Days:     1,
	})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing was written.
	if store.FeeRepo.CountFees() != 0 {
		t.Errorf("expected no fees, got %d", store.FeeRepo.CountFees())
	}
	driver := store.DriverRepo.GetDriver("driver-1")
	if driver.WalletBalance != 4 {
		t.Errorf("wallet should be untouched, got %v", driver.WalletBalance)
	}
}

func TestSubscription_PaymentLiftsSuspension(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID:                 "driver-1",
		Status:             domain.DriverStatusSuspended,
		SubscriptionExpiry: baseTime.Add(-24 * time.Hour),
		WalletBalance:      50,
	})

	result, err := subs.RecordPayment(context.Background(), service.RecordPaymentRequest{
		DriverID: "driver-1",
		Days:     1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Back to OFF_DUTY, not AVAILABLE: going online is an explicit step.
	if result.Driver.Status != domain.DriverStatusOffDuty {
		t.Errorf("expected OFF_DUTY after payment, got %s", result.Driver.Status)
	}
}

func TestSubscription_StreakConsecutiveDays(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	for i, daysAgo := range []int{0, 1, 2} {
		day := baseTime.AddDate(0, 0, -daysAgo)
		store.FeeRepo.AddFee(&domain.DailyFee{
			ID:       fmt.Sprintf("fee-%d", i),
			DriverID: "driver-1",
			FeeDate:  day,
			PaidAt:   day,
			Status:   domain.FeeStatusPaid,
		})
	}

	streak, err := subs.Streak(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected streak 3, got %d", streak)
	}
}

func TestSubscription_StreakBrokenByGap(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	// Paid today and two days ago; yesterday is missing.
	for i, daysAgo := range []int{0, 2} {
		day := baseTime.AddDate(0, 0, -daysAgo)
		store.FeeRepo.AddFee(&domain.DailyFee{
			ID:       fmt.Sprintf("fee-%d", i),
			DriverID: "driver-1",
			FeeDate:  day,
			PaidAt:   day,
			Status:   domain.FeeStatusPaid,
		})
	}

	streak, err := subs.Streak(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 1 {
		t.Errorf("expected streak 1, got %d", streak)
	}
}

func TestSubscription_StreakSkipsUnpaidFees(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{ID: "driver-1"})

	store.FeeRepo.AddFee(&domain.DailyFee{
		ID: "fee-paid", DriverID: "driver-1",
		FeeDate: baseTime, PaidAt: baseTime, Status: domain.FeeStatusPaid,
	})
	// An unpaid row on the same day must not break anything.
	store.FeeRepo.AddFee(&domain.DailyFee{
		ID: "fee-unpaid", DriverID: "driver-1",
		FeeDate: baseTime.AddDate(0, 0, -1), Status: domain.FeeStatusPending,
	})

	streak, err := subs.Streak(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streak != 1 {
		t.Errorf("expected streak 1, got %d", streak)
	}
}

func TestSubscription_TopUpWallet(t *testing.T) {
	t.Parallel()

	subs, store, _, _ := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{ID: "driver-1", WalletBalance: 10})

	driver, err := subs.TopUpWallet(context.Background(), "driver-1", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.WalletBalance != 35 {
		t.Errorf("expected wallet 35, got %v", driver.WalletBalance)
	}

	if _, err := subs.TopUpWallet(context.Background(), "driver-1", -5); !errors.Is(err, service.ErrInvalidTopUpAmount) {
		t.Errorf("expected ErrInvalidTopUpAmount, got %v", err)
	}
}

func TestSubscription_PaymentPublishesEvent(t *testing.T) {
	t.Parallel()

	subs, store, _, publisher := newSubscriptionFixture(baseTime)
	store.DriverRepo.AddDriver(&domain.Driver{
		ID: "driver-1", Status: domain.DriverStatusOffDuty, WalletBalance: 50,
	})

	if _, err := subs.RecordPayment(context.Background(), service.RecordPaymentRequest{
		DriverID: "driver-1", Days: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if publisher.CountByType(service.EventSubscriptionPaid) != 1 {
		t.Errorf("expected one %s event", service.EventSubscriptionPaid)
	}
}
