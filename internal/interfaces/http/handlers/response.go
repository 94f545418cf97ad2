// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrUserExists),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, product.ErrDuplicateSlug):
		return http.StatusConflict

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrUserInactive),
		errors.Is(err, payment.ErrOrderOwnership):
		return http.StatusForbidden

	case errors.Is(err, user.ErrInvalidDiscountPercent),
		errors.Is(err, user.ErrInvalidScore),
		errors.Is(err, user.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrNoOwner),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidDiscount),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, product.ErrProductUnavailable),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrOrderRequiresUser),
		errors.Is(err, payment.ErrInvalidPrice):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error response; internal errors are recorded on
// the context for the request logger and hidden from the client
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}

// statusForOutcome maps an order completion outcome onto an HTTP status code
func statusForOutcome(o order.Outcome) int {
	switch o {
	case order.OutcomeCompleted, order.OutcomeAlreadyCompleted:
		return http.StatusOK
	case order.OutcomeInsufficientInventory:
		return http.StatusConflict
	case order.OutcomeBusy:
		return http.StatusServiceUnavailable
	case order.OutcomeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}

// requireUser returns the authenticated user id or writes 401
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
	}
	return userID, ok
}
