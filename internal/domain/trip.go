package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending    TripStatus = "PENDING"
	TripStatusAssigned   TripStatus = "ASSIGNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// IsTerminal reports whether the status is a final, immutable state.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// Trip represents a transportation request in the system.
// DriverID and VehicleID are empty until the trip is assigned.
type Trip struct {
	ID                 string
	RiderID            string
	PickupLat          float64
	PickupLng          float64
	PickupAddress      string
	DestinationLat     float64
	DestinationLng     float64
	DestinationAddress string
	VehicleClass       string
	PassengerCount     int
	DistanceKm         float64
	EstimatedFare      float64
	FinalFare          float64
	DriverID           string
	VehicleID          string
	Status             TripStatus
	CreatedAt          time.Time
	AssignedAt         time.Time
	StartedAt          time.Time
	CompletedAt        time.Time
	CancelledAt        time.Time
	CancelReason       string
}
