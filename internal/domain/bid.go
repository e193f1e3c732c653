package domain

import "time"

// BidStatus represents the current status of a bid.
type BidStatus string

const (
	BidStatusPending  BidStatus = "PENDING"
	BidStatusAccepted BidStatus = "ACCEPTED"
	BidStatusRejected BidStatus = "REJECTED"
)

// Bid represents a driver's fare proposal against one trip.
// Bids are never deleted; resolved bids keep their final status as an
// audit trail.
type Bid struct {
	ID         string
	TripID     string
	DriverID   string
	VehicleID  string
	Fare       float64
	Message    string
	EtaMinutes int
	Status     BidStatus
	CreatedAt  time.Time
	ResolvedAt time.Time
}
