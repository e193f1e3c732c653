package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// BidHandler handles HTTP requests for bids.
type BidHandler struct {
	bidService *service.BidService
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(bidService *service.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// SubmitBidRequest is the HTTP request body for submitting a bid.
type SubmitBidRequest struct {
	DriverID   string  `json:"driver_id"`
	Fare       float64 `json:"fare"`
	Message    string  `json:"message,omitempty"`
	EtaMinutes int     `json:"eta_minutes,omitempty"`
}

// AcceptBidRequest is the HTTP request body for accepting a bid.
type AcceptBidRequest struct {
	RiderID string `json:"rider_id"`
}

// BidResponse is the HTTP response for bid operations.
type BidResponse struct {
	ID         string  `json:"id"`
	TripID     string  `json:"trip_id"`
	DriverID   string  `json:"driver_id"`
	Fare       float64 `json:"fare"`
	Message    string  `json:"message,omitempty"`
	EtaMinutes int     `json:"eta_minutes,omitempty"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	ResolvedAt string  `json:"resolved_at,omitempty"`
}

// AcceptBidResponse is the HTTP response for accepting a bid.
type AcceptBidResponse struct {
	Trip TripResponse `json:"trip"`
	Bid  BidResponse  `json:"bid"`
}

func bidResponse(bid *domain.Bid) BidResponse {
	response := BidResponse{
		ID:         bid.ID,
		TripID:     bid.TripID,
		DriverID:   bid.DriverID,
		Fare:       bid.Fare,
		Message:    bid.Message,
		EtaMinutes: bid.EtaMinutes,
		Status:     string(bid.Status),
		CreatedAt:  bid.CreatedAt.Format(timeFormat),
	}

	if !bid.ResolvedAt.IsZero() {
		response.ResolvedAt = bid.ResolvedAt.Format(timeFormat)
	}

	return response
}

// SubmitBid handles POST /v1/trips/:id/bids
func (h *BidHandler) SubmitBid(c *gin.Context) {
	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	bid, err := h.bidService.SubmitBid(c.Request.Context(), service.SubmitBidRequest{
		TripID:     c.Param("id"),
		DriverID:   req.DriverID,
		Fare:       req.Fare,
		Message:    req.Message,
		EtaMinutes: req.EtaMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, bidResponse(bid))
}

// ListBids handles GET /v1/trips/:id/bids?rider_id=...
func (h *BidHandler) ListBids(c *gin.Context) {
	bids, err := h.bidService.ListBids(c.Request.Context(), c.Param("id"), c.Query("rider_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BidResponse, 0, len(bids))
	for _, bid := range bids {
		response = append(response, bidResponse(bid))
	}

	respondJSON(c, http.StatusOK, response)
}

// AcceptBid handles POST /v1/bids/:id/accept
func (h *BidHandler) AcceptBid(c *gin.Context) {
	var req AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bidService.AcceptBid(c.Request.Context(), service.AcceptBidRequest{
		BidID:   c.Param("id"),
		RiderID: req.RiderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AcceptBidResponse{
		Trip: tripResponse(result.Trip),
		Bid:  bidResponse(result.Bid),
	})
}
