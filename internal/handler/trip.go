package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	RiderID            string  `json:"rider_id"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupAddress      string  `json:"pickup_address,omitempty"`
	DestinationLat     float64 `json:"destination_lat"`
	DestinationLng     float64 `json:"destination_lng"`
	DestinationAddress string  `json:"destination_address,omitempty"`
	VehicleClass       string  `json:"vehicle_class,omitempty"`
	PassengerCount     int     `json:"passenger_count"`
}

// AcceptTripRequest is the HTTP request body for directly accepting a trip.
type AcceptTripRequest struct {
	DriverID string `json:"driver_id"`
}

// UpdateTripStatusRequest is the HTTP request body for a status change.
type UpdateTripStatusRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"` // RIDER or DRIVER
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID                 string  `json:"id"`
	RiderID            string  `json:"rider_id"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupAddress      string  `json:"pickup_address,omitempty"`
	DestinationLat     float64 `json:"destination_lat"`
	DestinationLng     float64 `json:"destination_lng"`
	DestinationAddress string  `json:"destination_address,omitempty"`
	VehicleClass       string  `json:"vehicle_class"`
	PassengerCount     int     `json:"passenger_count"`
	DistanceKm         float64 `json:"distance_km"`
	EstimatedFare      float64 `json:"estimated_fare"`
	FinalFare          float64 `json:"final_fare,omitempty"`
	Status             string  `json:"status"`
	DriverID           string  `json:"driver_id,omitempty"`
	VehicleID          string  `json:"vehicle_id,omitempty"`
	CancelReason       string  `json:"cancel_reason,omitempty"`
	CreatedAt          string  `json:"created_at"`
	AssignedAt         string  `json:"assigned_at,omitempty"`
	StartedAt          string  `json:"started_at,omitempty"`
	CompletedAt        string  `json:"completed_at,omitempty"`
	CancelledAt        string  `json:"cancelled_at,omitempty"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	response := TripResponse{
		ID:                 trip.ID,
		RiderID:            trip.RiderID,
		PickupLat:          trip.PickupLat,
		PickupLng:          trip.PickupLng,
		PickupAddress:      trip.PickupAddress,
		DestinationLat:     trip.DestinationLat,
		DestinationLng:     trip.DestinationLng,
		DestinationAddress: trip.DestinationAddress,
		VehicleClass:       trip.VehicleClass,
		PassengerCount:     trip.PassengerCount,
		DistanceKm:         trip.DistanceKm,
		EstimatedFare:      trip.EstimatedFare,
		FinalFare:          trip.FinalFare,
		Status:             string(trip.Status),
		DriverID:           trip.DriverID,
		VehicleID:          trip.VehicleID,
		CancelReason:       trip.CancelReason,
		CreatedAt:          trip.CreatedAt.Format(timeFormat),
	}

	if !trip.AssignedAt.IsZero() {
		response.AssignedAt = trip.AssignedAt.Format(timeFormat)
	}
	if !trip.StartedAt.IsZero() {
		response.StartedAt = trip.StartedAt.Format(timeFormat)
	}
	if !trip.CompletedAt.IsZero() {
		response.CompletedAt = trip.CompletedAt.Format(timeFormat)
	}
	if !trip.CancelledAt.IsZero() {
		response.CancelledAt = trip.CancelledAt.Format(timeFormat)
	}

	return response
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		RiderID:            req.RiderID,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		DestinationLat:     req.DestinationLat,
		DestinationLng:     req.DestinationLng,
		DestinationAddress: req.DestinationAddress,
		VehicleClass:       req.VehicleClass,
		PassengerCount:     req.PassengerCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, tripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// ListNearby handles GET /v1/trips/nearby?driver_id=...&radius_km=...
func (h *TripHandler) ListNearby(c *gin.Context) {
	driverID := c.Query("driver_id")

	var radiusKm float64
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
		radiusKm = parsed
	}

	trips, err := h.tripService.ListNearbyPending(c.Request.Context(), driverID, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// AcceptTrip handles POST /v1/trips/:id/accept
func (h *TripHandler) AcceptTrip(c *gin.Context) {
	var req AcceptTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.AcceptDirect(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// UpdateStatus handles POST /v1/trips/:id/status
func (h *TripHandler) UpdateStatus(c *gin.Context) {
	var req UpdateTripStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.UpdateStatus(c.Request.Context(), service.UpdateStatusRequest{
		TripID:    c.Param("id"),
		ActorID:   req.ActorID,
		Role:      service.ActorRole(req.Role),
		NewStatus: domain.TripStatus(req.Status),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}
