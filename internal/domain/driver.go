package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOffDuty   DriverStatus = "OFF_DUTY"
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
	DriverStatusSuspended DriverStatus = "SUSPENDED"
)

// Driver represents a driver in the system.
// SubscriptionExpiry is the zero time when the driver has never paid.
type Driver struct {
	ID                 string
	UserID             string
	Name               string
	Phone              string
	Status             DriverStatus
	Lat                float64
	Lng                float64
	LocationUpdatedAt  time.Time
	ActiveVehicleID    string
	SubscriptionExpiry time.Time
	Rating             float64
	TripCount          int
	WalletBalance      float64
}
