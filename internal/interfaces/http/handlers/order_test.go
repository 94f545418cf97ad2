package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/infrastructure/memory"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

type orderFixture struct {
	store  *memory.OrderStore
	router *gin.Engine
	tokens *auth.JWTManager
	order  *order.Order
}

func newOrderFixture(t *testing.T, lockTimeout time.Duration, retryAfter int) *orderFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	ctx := context.Background()

	catalog := memory.NewCatalog()
	p := &product.Product{Name: "Grinder", Slug: "grinder", Price: 900, Quantity: 4, IsActive: true}
	require.NoError(t, catalog.Create(ctx, p))

	store := memory.NewOrderStore(catalog)
	products := product.NewService(catalog, log)
	carts := cart.NewService(memory.NewCartStore(), memory.NewCartStore(), products, log)
	orders := order.NewService(store, identifier.NewRandomGenerator(6), nil, order.Options{
		LockTimeout:      lockTimeout,
		CurrencyPerPoint: 1000,
	}, log)

	created, err := orders.CreateOrder(ctx, 1, &cart.Cart{
		Owner: cart.ForUser(1),
		Items: []cart.Item{{ProductID: p.ID, ProductName: p.Name, UnitPrice: p.Price, Quantity: 1}},
	})
	require.NoError(t, err)

	tokens := auth.NewJWTManager(&config.Config{
		JWT: config.JWTConfig{Secret: "handler-test-secret-0123456789abcdef", AccessTokenExpiry: time.Hour},
	})

	h := handlers.NewOrderHandler(orders, carts, retryAfter, log)
	r := gin.New()
	r.POST("/orders/:id/complete", middleware.AuthMiddleware(tokens), h.CompleteOrder)

	return &orderFixture{store: store, router: r, tokens: tokens, order: created}
}

func (f *orderFixture) complete(t *testing.T, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(userID, "", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/complete", f.order.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCompleteOrderWhileLockedIsBusy(t *testing.T) {
	f := newOrderFixture(t, 20*time.Millisecond, 7)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.store.WithExclusiveLock(context.Background(), f.order.ID, time.Second, func(order.Locked) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	w := f.complete(t, 1)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "7", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"outcome":"busy"`)

	close(release)
	require.NoError(t, <-done)

	// Once the holder is gone the same request succeeds
	w = f.complete(t, 1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"completed"`)
	assert.Empty(t, w.Header().Get("Retry-After"))
}

func TestCompleteOrderOfAnotherUserIsHidden(t *testing.T) {
	f := newOrderFixture(t, time.Second, 1)

	w := f.complete(t, 2)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), order.ErrOrderNotFound.Error())
}
