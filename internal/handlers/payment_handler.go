package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/internal/services"
)

// PaymentHandler exposes the rent collection endpoints. The confirmation and
// failure endpoints are webhook-style: unauthenticated, authorized solely by
// the gateway signature.
type PaymentHandler struct {
	paymentService *services.PaymentService
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// SendReminders handles POST /listings/:id/payments/reminders (pg_admin)
func (h *PaymentHandler) SendReminders(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.paymentService.SendReminders(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reminders processed",
		"summary": summary,
	})
}

type paymentCallbackRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// Confirm handles POST /payments/confirmation (public, signature-authorized)
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payment, err := h.paymentService.ConfirmPayment(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment confirmed",
		"payment": payment,
	})
}

// Fail handles POST /payments/failure (public, signature-authorized)
func (h *PaymentHandler) Fail(c *gin.Context) {
	var req paymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	payment, err := h.paymentService.FailPayment(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment marked failed",
		"payment": payment,
	})
}

// GetByOrder handles GET /payments/order/:orderId (public pre-checkout fetch)
func (h *PaymentHandler) GetByOrder(c *gin.Context) {
	orderID := c.Param("orderId")
	if orderID == "" {
		badRequest(c, "Order id is required")
		return
	}

	payment, err := h.paymentService.GetByOrderID(orderID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// ListCompleted handles GET /listings/:id/payments/completed (pg_admin)
func (h *PaymentHandler) ListCompleted(c *gin.Context) {
	h.listByStatus(c, models.PaymentStatusCompleted)
}

// ListPending handles GET /listings/:id/payments/pending (pg_admin)
func (h *PaymentHandler) ListPending(c *gin.Context) {
	h.listByStatus(c, models.PaymentStatusPending)
}

func (h *PaymentHandler) listByStatus(c *gin.Context, status string) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByStatus(userCtx.UserID, listingID, status)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// Totals handles GET /listings/:id/payments/totals (pg_admin). Sums exclude
// payments of deactivated residents.
func (h *PaymentHandler) Totals(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	completed, err := h.paymentService.TotalByStatus(userCtx.UserID, listingID, models.PaymentStatusCompleted)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}
	pending, err := h.paymentService.TotalByStatus(userCtx.UserID, listingID, models.PaymentStatusPending)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_completed": completed,
		"total_pending":   pending,
	})
}

// ListByResident handles GET /listings/:id/residents/:residentId/payments (pg_admin)
func (h *PaymentHandler) ListByResident(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByResident(userCtx.UserID, listingID, residentID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
