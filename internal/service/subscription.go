package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"farebid/internal/domain"
	"farebid/internal/repository"
)

const feeDay = 24 * time.Hour

// SubscriptionConfig contains the subscription ledger parameters.
type SubscriptionConfig struct {
	DailyFee    float64       // default per-day fee
	GraceWindow time.Duration // how far past expiry a driver may still work
}

// DefaultSubscriptionConfig returns the default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		DailyFee:    5.0,
		GraceWindow: 6 * time.Hour,
	}
}

// SubscriptionService is the ledger of per-driver paid time windows. It
// derives eligibility purely from wall-clock time and stored payment
// records.
type SubscriptionService struct {
	store     repository.Store
	publisher StatusPublisher
	clock     Clock
	cfg       SubscriptionConfig
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(
	store repository.Store,
	publisher StatusPublisher,
	clock Clock,
	cfg SubscriptionConfig,
) *SubscriptionService {
	return &SubscriptionService{
		store:     store,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// CurrentStatus derives a driver's subscription status at the given instant.
func (s *SubscriptionService) CurrentStatus(driver *domain.Driver, now time.Time) domain.SubscriptionStatus {
	expiry := driver.SubscriptionExpiry
	if expiry.IsZero() {
		return domain.SubscriptionExpired
	}

	if expiry.After(now) {
		return domain.SubscriptionActive
	}

	if now.Sub(expiry) <= s.cfg.GraceWindow {
		return domain.SubscriptionGrace
	}

	return domain.SubscriptionExpired
}

// CanAcceptWork reports whether a driver may bid, go online, or be assigned
// a trip at the given instant.
func (s *SubscriptionService) CanAcceptWork(driver *domain.Driver, now time.Time) bool {
	status := s.CurrentStatus(driver, now)
	return status == domain.SubscriptionActive || status == domain.SubscriptionGrace
}

// RecordPaymentRequest contains the parameters for a subscription payment.
type RecordPaymentRequest struct {
	DriverID string
	Days     int
	Amount   float64 // per-day fee; zero means the configured default
}

// RecordPaymentResult contains the outcome of a subscription payment.
type RecordPaymentResult struct {
	Driver *domain.Driver
	Fees   []*domain.DailyFee
}

// RecordPayment debits a driver's wallet and extends the subscription by
// the given number of days. One DailyFee row is created per day; each day's
// window starts at the later of now or the previous expiry, so paying N
// days at once equals paying one day N times.
func (s *SubscriptionService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	if req.Days <= 0 {
		return nil, ErrInvalidDayCount
	}

	amount := req.Amount
	if amount == 0 {
		amount = s.cfg.DailyFee
	}
	if amount < 0 {
		return nil, ErrInvalidFeeAmount
	}

	var result RecordPaymentResult

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		driver, err := tx.Drivers().GetByID(ctx, req.DriverID)
		if err != nil {
			return err
		}

		total := amount * float64(req.Days)
		if driver.WalletBalance < total {
			return ErrInsufficientFunds
		}

		now := s.clock.Now()
		start := now
		if driver.SubscriptionExpiry.After(now) {
			start = driver.SubscriptionExpiry
		}

		fees := make([]*domain.DailyFee, 0, req.Days)
		for i := 0; i < req.Days; i++ {
			windowStart := start.Add(time.Duration(i) * feeDay)
			fee := &domain.DailyFee{
				ID:        uuid.New().String(),
				DriverID:  driver.ID,
				Amount:    amount,
				FeeDate:   windowStart,
				PaidAt:    now,
				ExpiresAt: windowStart.Add(feeDay),
				Status:    domain.FeeStatusPaid,
			}
			if err := tx.Fees().Create(ctx, fee); err != nil {
				return err
			}
			fees = append(fees, fee)
		}

		driver.WalletBalance -= total
		driver.SubscriptionExpiry = start.Add(time.Duration(req.Days) * feeDay)

		// Payment lifts an automatic suspension; the driver still has to
		// explicitly go online again.
		if driver.Status == domain.DriverStatusSuspended {
			driver.Status = domain.DriverStatusOffDuty
		}

		if err := tx.Drivers().Update(ctx, driver); err != nil {
			return err
		}

		result.Driver = driver
		result.Fees = fees
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(DriverTopic(req.DriverID), Event{
		Type: EventSubscriptionPaid,
		Data: map[string]any{
			"driver_id":  result.Driver.ID,
			"days":       req.Days,
			"expires_at": result.Driver.SubscriptionExpiry,
		},
		At: s.clock.Now(),
	})

	return &result, nil
}

// Streak counts the consecutive calendar days ending at the most recent
// paid fee. It is a pure function of stored history: unpaid fees are
// skipped without breaking the count, and the walk stops at the first gap.
func (s *SubscriptionService) Streak(ctx context.Context, driverID string) (int, error) {
	if driverID == "" {
		return 0, ErrInvalidDriverID
	}

	fees, err := s.store.Fees().ListByDriver(ctx, driverID)
	if err != nil {
		return 0, err
	}

	streak := 0
	var next time.Time // the earlier day expected to continue the streak
	for _, fee := range fees {
		if fee.PaidAt.IsZero() {
			continue
		}

		day := dateOnly(fee.FeeDate)
		switch {
		case streak == 0:
			streak = 1
			next = day.AddDate(0, 0, -1)
		case day.Equal(next):
			streak++
			next = day.AddDate(0, 0, -1)
		case day.Equal(next.AddDate(0, 0, 1)):
			// Another fee on an already-counted day.
		default:
			return streak, nil
		}
	}

	return streak, nil
}

// SubscriptionInfo is the externally visible state of a driver's subscription.
type SubscriptionInfo struct {
	DriverID      string
	Status        domain.SubscriptionStatus
	ExpiresAt     time.Time
	GraceEndsAt   time.Time
	Streak        int
	WalletBalance float64
}

// GetStatus returns a driver's current subscription state.
func (s *SubscriptionService) GetStatus(ctx context.Context, driverID string) (*SubscriptionInfo, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.store.Drivers().GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	streak, err := s.Streak(ctx, driverID)
	if err != nil {
		return nil, err
	}

	info := &SubscriptionInfo{
		DriverID:      driver.ID,
		Status:        s.CurrentStatus(driver, s.clock.Now()),
		ExpiresAt:     driver.SubscriptionExpiry,
		Streak:        streak,
		WalletBalance: driver.WalletBalance,
	}
	if !driver.SubscriptionExpiry.IsZero() {
		info.GraceEndsAt = driver.SubscriptionExpiry.Add(s.cfg.GraceWindow)
	}

	return info, nil
}

// TopUpWallet credits a driver's wallet.
func (s *SubscriptionService) TopUpWallet(ctx context.Context, driverID string, amount float64) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if amount <= 0 {
		return nil, ErrInvalidTopUpAmount
	}

	var driver *domain.Driver
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		d, err := tx.Drivers().GetByID(ctx, driverID)
		if err != nil {
			return err
		}

		d.WalletBalance += amount
		if err := tx.Drivers().Update(ctx, d); err != nil {
			return err
		}

		driver = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	return driver, nil
}

func (s *SubscriptionService) publish(topic string, event Event) {
	if err := s.publisher.Publish(topic, event); err != nil {
		log.Printf("publish %s to %s failed: %v", event.Type, topic, err)
	}
}

// dateOnly truncates a time to its calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
