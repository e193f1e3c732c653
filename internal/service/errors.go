package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidBidID is returned when bid ID is empty.
	ErrInvalidBidID = errors.New("invalid bid id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidPassengerCount is returned when the passenger count is not positive.
	ErrInvalidPassengerCount = errors.New("invalid passenger count")

	// ErrInvalidFare is returned when a bid fare is not positive.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrInvalidDayCount is returned when a payment covers zero or negative days.
	ErrInvalidDayCount = errors.New("invalid day count")

	// ErrInvalidFeeAmount is returned when a payment amount is not positive.
	ErrInvalidFeeAmount = errors.New("invalid fee amount")

	// ErrInvalidTopUpAmount is returned when a wallet top-up amount is not positive.
	ErrInvalidTopUpAmount = errors.New("invalid top-up amount")

	// ErrCancelReasonRequired is returned when a cancellation carries no reason.
	ErrCancelReasonRequired = errors.New("cancellation reason required")

	// ErrInvalidStatus is returned when a requested trip status is unknown.
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrNoDriverLocation is returned when a driver has never reported a location.
	ErrNoDriverLocation = errors.New("driver location unknown")

	// ErrSubscriptionRequired is returned when a driver's subscription is
	// expired past the grace window.
	ErrSubscriptionRequired = errors.New("active subscription required")

	// ErrNoActiveVehicle is returned when a driver has no approved, active vehicle.
	ErrNoActiveVehicle = errors.New("no active vehicle")

	// ErrTripNotBiddable is returned when bidding on a trip that is not pending.
	ErrTripNotBiddable = errors.New("trip not open for bidding")

	// ErrDuplicateBid is returned when a driver already holds a pending bid
	// on the trip.
	ErrDuplicateBid = errors.New("driver already has a pending bid on this trip")

	// ErrBidOutOfRange is returned when a bid fare falls outside the allowed
	// band around the estimated fare.
	ErrBidOutOfRange = errors.New("bid fare outside allowed range")

	// ErrInvalidTransition is returned for any trip status change the
	// lifecycle does not define.
	ErrInvalidTransition = errors.New("invalid trip status transition")

	// ErrTripNoLongerAvailable is returned when a direct accept loses the
	// race for a trip.
	ErrTripNoLongerAvailable = errors.New("trip no longer available")

	// ErrTripNoLongerBiddable is returned when a bid accept loses the race
	// for a trip.
	ErrTripNoLongerBiddable = errors.New("trip no longer biddable")

	// ErrNotTripRider is returned when someone other than the trip's rider
	// attempts a rider-only operation.
	ErrNotTripRider = errors.New("requester is not the trip rider")

	// ErrNotAssignedDriver is returned when someone other than the assigned
	// driver attempts a driver-only operation.
	ErrNotAssignedDriver = errors.New("requester is not the assigned driver")

	// ErrDriverNotAvailable is returned when a trip is assigned to a driver
	// who is not currently available.
	ErrDriverNotAvailable = errors.New("driver not available")

	// ErrTripInProgress is returned when a driver on a trip attempts a
	// status change reserved for idle drivers.
	ErrTripInProgress = errors.New("driver has a trip in progress")

	// ErrInsufficientFunds is returned when a driver's wallet cannot cover
	// a subscription payment.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)
