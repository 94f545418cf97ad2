// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// UserAdminHandler handles admin operations on user loyalty data
type UserAdminHandler struct {
	users *user.Service
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(users *user.Service) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// CreditScore handles POST /admin/users/:id/score
func (h *UserAdminHandler) CreditScore(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req user.ScoreCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.users.CreditScore(c.Request.Context(), userID, req.Points); err != nil {
		respondError(c, err)
		return
	}

	u, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Score credited successfully",
		"data":    u,
	})
}

// SetDiscountPercent handles PUT /admin/users/:id/discount-percent
func (h *UserAdminHandler) SetDiscountPercent(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req user.DiscountPercentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	u, err := h.users.SetDiscountPercent(c.Request.Context(), userID, req.DiscountPercent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount percent updated successfully",
		"data":    u,
	})
}
