package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farebid/internal/domain"
	"farebid/internal/service"
)

// SubscriptionHandler handles HTTP requests for driver subscriptions and
// wallets.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// PaySubscriptionRequest is the HTTP request body for a subscription payment.
type PaySubscriptionRequest struct {
	Days   int     `json:"days"`
	Amount float64 `json:"amount,omitempty"` // per-day override, zero uses the configured fee
}

// TopUpRequest is the HTTP request body for a wallet top-up.
type TopUpRequest struct {
	Amount float64 `json:"amount"`
}

// FeeResponse is the HTTP response for a daily fee record.
type FeeResponse struct {
	ID        string  `json:"id"`
	DriverID  string  `json:"driver_id"`
	Amount    float64 `json:"amount"`
	FeeDate   string  `json:"fee_date"`
	PaidAt    string  `json:"paid_at,omitempty"`
	ExpiresAt string  `json:"expires_at"`
	Status    string  `json:"status"`
}

// SubscriptionResponse is the HTTP response for subscription state.
type SubscriptionResponse struct {
	DriverID      string  `json:"driver_id"`
	Status        string  `json:"status"`
	ExpiresAt     string  `json:"expires_at,omitempty"`
	GraceEndsAt   string  `json:"grace_ends_at,omitempty"`
	Streak        int     `json:"streak"`
	WalletBalance float64 `json:"wallet_balance"`
}

// PaySubscriptionResponse is the HTTP response for a subscription payment.
type PaySubscriptionResponse struct {
	Driver DriverResponse `json:"driver"`
	Fees   []FeeResponse  `json:"fees"`
}

func feeResponse(fee *domain.DailyFee) FeeResponse {
	response := FeeResponse{
		ID:        fee.ID,
		DriverID:  fee.DriverID,
		Amount:    fee.Amount,
		FeeDate:   fee.FeeDate.Format("2006-01-02"),
		ExpiresAt: fee.ExpiresAt.Format(timeFormat),
		Status:    string(fee.Status),
	}

	if !fee.PaidAt.IsZero() {
		response.PaidAt = fee.PaidAt.Format(timeFormat)
	}

	return response
}

// Pay handles POST /v1/drivers/:id/subscription
func (h *SubscriptionHandler) Pay(c *gin.Context) {
	var req PaySubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.subscriptionService.RecordPayment(c.Request.Context(), service.RecordPaymentRequest{
		DriverID: c.Param("id"),
		Days:     req.Days,
		Amount:   req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	fees := make([]FeeResponse, 0, len(result.Fees))
	for _, fee := range result.Fees {
		fees = append(fees, feeResponse(fee))
	}

	respondJSON(c, http.StatusOK, PaySubscriptionResponse{
		Driver: driverResponse(result.Driver),
		Fees:   fees,
	})
}

// GetStatus handles GET /v1/drivers/:id/subscription
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	info, err := h.subscriptionService.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := SubscriptionResponse{
		DriverID:      info.DriverID,
		Status:        string(info.Status),
		Streak:        info.Streak,
		WalletBalance: info.WalletBalance,
	}

	if !info.ExpiresAt.IsZero() {
		response.ExpiresAt = info.ExpiresAt.Format(timeFormat)
		response.GraceEndsAt = info.GraceEndsAt.Format(timeFormat)
	}

	respondJSON(c, http.StatusOK, response)
}

// TopUp handles POST /v1/drivers/:id/wallet/topup
func (h *SubscriptionHandler) TopUp(c *gin.Context) {
	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.subscriptionService.TopUpWallet(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}
