// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments *payment.Service
	orders   *order.Service
	log      logrus.FieldLogger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *payment.Service, orders *order.Service, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		orders:   orders,
		log:      log,
	}
}

// RecordPayment handles POST /orders/:id/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req payment.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	p, err := h.payments.RecordPayment(c.Request.Context(), orderID, userID, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.orders.MarkPaid(c.Request.Context(), orderID); err != nil {
		h.log.WithError(err).WithField("payment_id", p.PaymentID).Error("payment recorded but order not marked paid")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment recorded successfully",
		"data":    p,
	})
}

// GetPayment handles GET /orders/:id/payments
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.payments.GetPayment(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if p.UserID != userID && !middleware.IsAdminFromContext(c) {
		respondError(c, payment.ErrPaymentNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment retrieved successfully",
		"data":    p,
	})
}
