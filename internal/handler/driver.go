package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"farebid/internal/domain"
	"farebid/internal/repository"
	"farebid/internal/service"
)

// DriverHandler handles HTTP requests for drivers and their vehicles.
type DriverHandler struct {
	availability *service.AvailabilityService
	driverRepo   repository.DriverRepository
	vehicleRepo  repository.VehicleRepository
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	availability *service.AvailabilityService,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
) *DriverHandler {
	return &DriverHandler{
		availability: availability,
		driverRepo:   driverRepo,
		vehicleRepo:  vehicleRepo,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// GoOnlineRequest is the HTTP request body for going online.
type GoOnlineRequest struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// GoOfflineRequest is the HTTP request body for going offline.
type GoOfflineRequest struct {
	Reason string `json:"reason,omitempty"`
}

// UpdateLocationRequest is the HTTP request body for a location update.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegisterVehicleRequest is the HTTP request body for vehicle registration.
type RegisterVehicleRequest struct {
	Class string `json:"class"`
	Plate string `json:"plate"`
	Model string `json:"model,omitempty"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	Status             string  `json:"status"`
	Lat                float64 `json:"lat,omitempty"`
	Lng                float64 `json:"lng,omitempty"`
	ActiveVehicleID    string  `json:"active_vehicle_id,omitempty"`
	SubscriptionExpiry string  `json:"subscription_expiry,omitempty"`
	Rating             float64 `json:"rating"`
	TripCount          int     `json:"trip_count"`
	WalletBalance      float64 `json:"wallet_balance"`
}

// VehicleResponse is the HTTP response for vehicle data.
type VehicleResponse struct {
	ID       string `json:"id"`
	DriverID string `json:"driver_id"`
	Class    string `json:"class"`
	Plate    string `json:"plate"`
	Model    string `json:"model,omitempty"`
	Approved bool   `json:"approved"`
	Active   bool   `json:"active"`
}

func driverResponse(driver *domain.Driver) DriverResponse {
	response := DriverResponse{
		ID:              driver.ID,
		Name:            driver.Name,
		Phone:           driver.Phone,
		Status:          string(driver.Status),
		Lat:             driver.Lat,
		Lng:             driver.Lng,
		ActiveVehicleID: driver.ActiveVehicleID,
		Rating:          driver.Rating,
		TripCount:       driver.TripCount,
		WalletBalance:   driver.WalletBalance,
	}

	if !driver.SubscriptionExpiry.IsZero() {
		response.SubscriptionExpiry = driver.SubscriptionExpiry.Format(timeFormat)
	}

	return response
}

func vehicleResponse(vehicle *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:       vehicle.ID,
		DriverID: vehicle.DriverID,
		Class:    vehicle.Class,
		Plate:    vehicle.Plate,
		Model:    vehicle.Model,
		Approved: vehicle.Approved,
		Active:   vehicle.Active,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	existing, err := h.driverRepo.GetByPhone(c.Request.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}

	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Driver already registered",
			"driver":  driverResponse(existing),
		})
		return
	}

	driver := &domain.Driver{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Phone:  req.Phone,
		Status: domain.DriverStatusOffDuty,
	}

	if err := h.driverRepo.Create(c.Request.Context(), driver); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.availability.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	var req GoOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	svcReq := service.GoOnlineRequest{DriverID: c.Param("id")}
	if req.Lat != nil && req.Lng != nil {
		svcReq.Lat = *req.Lat
		svcReq.Lng = *req.Lng
		svcReq.HasLocation = true
	}

	driver, err := h.availability.GoOnline(c.Request.Context(), svcReq)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	var req GoOfflineRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.availability.GoOffline(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.availability.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// RegisterVehicle handles POST /v1/drivers/:id/vehicles
//
// New vehicles start unapproved and stay invisible to the availability gate
// until approval.
func (h *DriverHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Class == "" || req.Plate == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "class and plate are required"})
		return
	}

	driverID := c.Param("id")
	if _, err := h.driverRepo.GetByID(c.Request.Context(), driverID); err != nil {
		respondError(c, err)
		return
	}

	vehicle := &domain.Vehicle{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		Class:     req.Class,
		Plate:     req.Plate,
		Model:     req.Model,
		Approved:  false,
		Active:    true,
		CreatedAt: time.Now(),
	}

	if err := h.vehicleRepo.Create(c.Request.Context(), vehicle); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, vehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/drivers/:id/vehicles
func (h *DriverHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.vehicleRepo.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		response = append(response, vehicleResponse(vehicle))
	}

	respondJSON(c, http.StatusOK, response)
}

// ApproveVehicle handles POST /v1/vehicles/:id/approve
func (h *DriverHandler) ApproveVehicle(c *gin.Context) {
	vehicle, err := h.vehicleRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !vehicle.Approved {
		vehicle.Approved = true
		if err := h.vehicleRepo.Update(c.Request.Context(), vehicle); err != nil {
			respondError(c, err)
			return
		}
	}

	respondJSON(c, http.StatusOK, vehicleResponse(vehicle))
}
