package domain

import "time"

// FeeStatus represents the payment state of a daily fee.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "PAID"
	FeeStatusPending FeeStatus = "PENDING"
	FeeStatusOverdue FeeStatus = "OVERDUE"
)

// SubscriptionStatus is the time-derived eligibility of a driver.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "ACTIVE"
	SubscriptionGrace   SubscriptionStatus = "GRACE"
	SubscriptionExpired SubscriptionStatus = "EXPIRED"
)

// DailyFee is one paid (or owed) day of a driver's subscription.
// PaidAt is the zero time while the fee is unpaid. Paid fees are immutable.
type DailyFee struct {
	ID        string
	DriverID  string
	Amount    float64
	FeeDate   time.Time
	PaidAt    time.Time
	ExpiresAt time.Time
	Status    FeeStatus
}
