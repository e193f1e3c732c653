package service

import "time"

// Event types pushed through the status relay.
const (
	EventTripCreated          = "TRIP_CREATED"
	EventTripAssigned         = "TRIP_ASSIGNED"
	EventTripStatus           = "TRIP_STATUS"
	EventBidSubmitted         = "BID_SUBMITTED"
	EventDriverStatus         = "DRIVER_STATUS"
	EventDriverLocation       = "DRIVER_LOCATION"
	EventSubscriptionPaid     = "SUBSCRIPTION_PAID"
	EventSubscriptionReminder = "SUBSCRIPTION_REMINDER"
)

// Event is a state change pushed to relay subscribers.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// StatusPublisher fans out events to whoever is watching a topic. Delivery
// is best-effort: callers log failures and never roll back the state change
// that produced the event.
type StatusPublisher interface {
	Publish(topic string, event Event) error
}

// NoopPublisher is a StatusPublisher that drops every event. Used when no
// relay is wired.
type NoopPublisher struct{}

// Publish discards the event.
func (NoopPublisher) Publish(topic string, event Event) error { return nil }

// Ensure NoopPublisher implements StatusPublisher.
var _ StatusPublisher = NoopPublisher{}

// TripTopic is the relay topic for a single trip's watchers.
func TripTopic(tripID string) string { return "trip:" + tripID }

// UserTopic is the relay topic for a single rider.
func UserTopic(userID string) string { return "user:" + userID }

// DriverTopic is the relay topic for a single driver.
func DriverTopic(driverID string) string { return "driver:" + driverID }

// DriversTopic is the broadcast topic all online drivers watch for new
// pending trips.
const DriversTopic = "drivers"
