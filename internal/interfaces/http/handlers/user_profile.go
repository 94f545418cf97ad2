// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// UserProfileHandler handles the caller's own profile
type UserProfileHandler struct {
	users *user.Service
}

// NewUserProfileHandler creates a new profile handler
func NewUserProfileHandler(users *user.Service) *UserProfileHandler {
	return &UserProfileHandler{users: users}
}

// GetProfile handles GET /profile
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	u, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    u,
	})
}

// UpdateProfile handles PUT /profile. Only the fields of user.ProfileUpdate
// can be changed; loyalty and admin fields are not reachable from here.
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req user.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"data":    u,
	})
}
