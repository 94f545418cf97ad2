// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders     *order.Service
	carts      *cart.Service
	retryAfter int
	log        logrus.FieldLogger
}

// NewOrderHandler creates a new order handler. retryAfter is the number of
// seconds a client is told to wait when a completion is busy.
func NewOrderHandler(orders *order.Service, carts *cart.Service, retryAfter int, log logrus.FieldLogger) *OrderHandler {
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &OrderHandler{
		orders:     orders,
		carts:      carts,
		retryAfter: retryAfter,
		log:        log,
	}
}

// CreateOrder handles POST /orders. The user's cart is snapshotted into the
// order and then emptied.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	owner := cart.ForUser(userID)

	current, err := h.carts.Get(ctx, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.orders.CreateOrder(ctx, userID, current)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.carts.Clear(ctx, owner); err != nil {
		h.log.WithError(err).WithField("order_id", created.PublicID).Warn("failed to clear cart after order creation")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    created,
	})
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// loadOwned fetches the order addressed by the path and checks it belongs to
// the caller; admins may access every order
func (h *OrderHandler) loadOwned(c *gin.Context) (*order.Order, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}

	var (
		o   *order.Order
		err error
	)
	if slug := c.Param("slug"); slug != "" {
		o, err = h.orders.GetOrderBySlug(c.Request.Context(), slug)
	} else {
		id, ok := parseID(c, "id")
		if !ok {
			return nil, false
		}
		o, err = h.orders.GetOrder(c.Request.Context(), id)
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	// Foreign orders are reported as missing
	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		respondError(c, order.ErrOrderNotFound)
		return nil, false
	}
	return o, true
}

// GetOrder handles GET /orders/:id and GET /orders/slug/:slug
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.loadOwned(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetOrderTotal handles GET /orders/:id/total
func (h *OrderHandler) GetOrderTotal(c *gin.Context) {
	o, ok := h.loadOwned(c)
	if !ok {
		return
	}

	total, err := h.orders.GetTotalPrice(c.Request.Context(), o.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order total retrieved successfully",
		"data": order.TotalResponse{
			OrderID:    o.PublicID,
			TotalPrice: total,
		},
	})
}

// CompleteOrder handles POST /orders/:id/complete
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	o, ok := h.loadOwned(c)
	if !ok {
		return
	}

	result := h.orders.CompleteOrder(c.Request.Context(), o.ID)
	status := statusForOutcome(result.Outcome)

	if result.Outcome == order.OutcomeBusy {
		c.Header("Retry-After", strconv.Itoa(h.retryAfter))
	}
	if result.Err != nil {
		_ = c.Error(result.Err)
	}

	c.JSON(status, gin.H{
		"message": "Order completion processed",
		"data":    result,
	})
}
