// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints for users and guest sessions
type CartHandler struct {
	carts    *cart.Service
	sessions *SessionCookie
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, sessions *SessionCookie) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
	}
}

// owner resolves the cart of the authenticated user, or of the session
func (h *CartHandler) owner(c *gin.Context) cart.Owner {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.ForUser(userID)
	}
	return cart.ForSession(h.sessions.GetOrCreate(c))
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	current, err := h.carts.Get(c.Request.Context(), h.owner(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    current.ToResponse(),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	current, err := h.carts.AddItem(c.Request.Context(), h.owner(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    current.ToResponse(),
	})
}

// RemoveFromCart handles DELETE /cart/items/:product_id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "product_id")
	if !ok {
		return
	}

	current, err := h.carts.RemoveItem(c.Request.Context(), h.owner(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    current.ToResponse(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), h.owner(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
