// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/user"
)

// AuthHandler handles registration and sign-in
type AuthHandler struct {
	users    *user.Service
	carts    *cart.Service
	sessions *SessionCookie
	log      logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, carts *cart.Service, sessions *SessionCookie, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		carts:    carts,
		sessions: sessions,
		log:      log,
	}
}

// Register handles POST /users
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	u, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    u,
	})
}

// Login handles POST /auth/token. A guest cart held by the caller's session
// is merged into the user's cart.
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if sessionID, ok := h.sessions.Get(c); ok {
		if err := h.carts.MergeGuestCart(c.Request.Context(), sessionID, resp.User.ID); err != nil {
			h.log.WithError(err).WithField("user_id", resp.User.ID).Warn("failed to merge guest cart")
		} else {
			h.sessions.Clear(c)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    resp,
	})
}
