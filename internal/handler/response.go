package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farebid/internal/repository"
	"farebid/internal/service"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidBidID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidPassengerCount),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidDayCount),
		errors.Is(err, service.ErrInvalidFeeAmount),
		errors.Is(err, service.ErrInvalidTopUpAmount),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrCancelReasonRequired),
		errors.Is(err, service.ErrBidOutOfRange),
		errors.Is(err, service.ErrNoDriverLocation):
		return http.StatusBadRequest

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotTripRider),
		errors.Is(err, service.ErrNotAssignedDriver),
		errors.Is(err, service.ErrSubscriptionRequired),
		errors.Is(err, service.ErrNoActiveVehicle):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrTripNotBiddable),
		errors.Is(err, service.ErrDuplicateBid),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTripNoLongerAvailable),
		errors.Is(err, service.ErrTripNoLongerBiddable),
		errors.Is(err, service.ErrDriverNotAvailable),
		errors.Is(err, service.ErrTripInProgress):
		return http.StatusConflict

	// Insufficient wallet balance
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
