package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func newTokens() *auth.JWTManager {
	return auth.NewJWTManager(&config.Config{
		JWT: config.JWTConfig{Secret: "middleware-test-secret-0123456789ab", AccessTokenExpiry: time.Hour},
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	user, err := tokens.GenerateAccessToken(5, "u@example.com", false)
	require.NoError(t, err)
	admin, err := tokens.GenerateAccessToken(1, "a@example.com", true)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(tokens), func(c *gin.Context) {
		id, _ := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "admin": middleware.IsAdminFromContext(c)})
	})
	r.GET("/admin", middleware.AuthMiddleware(tokens), middleware.AdminMiddleware(), ok)
	r.GET("/maybe", middleware.OptionalAuthMiddleware(tokens), func(c *gin.Context) {
		_, authed := middleware.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": authed})
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid user", "/me", "Bearer " + user, http.StatusOK, `"user_id":5`},
		{"user on admin route", "/admin", "Bearer " + user, http.StatusForbidden, "Admin access required"},
		{"admin on admin route", "/admin", "Bearer " + admin, http.StatusOK, "ok"},
		{"optional without token", "/maybe", "", http.StatusOK, `"authenticated":false`},
		{"optional with bad token", "/maybe", "Bearer nope", http.StatusOK, `"authenticated":false`},
		{"optional with token", "/maybe", "Bearer " + user, http.StatusOK, `"authenticated":true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = serve(r, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 65))
	w = serve(r, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(middleware.RateLimit(redis.NewRateLimiter(rdb, time.Minute), 2, logger.Discard()))
	r.GET("/", ok)

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	mr.FastForward(time.Minute + time.Second)
	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Hit(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (brokenLimiter) Window() time.Duration { return time.Minute }

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimit(brokenLimiter{}, 1, logger.Discard()))
	r.GET("/", ok)

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{Security: config.SecurityConfig{
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
	}}

	r := gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/", ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	cfg.Security.CORSAllowedOrigins = []string{"*"}
	r = gin.New()
	r.Use(middleware.CORS(cfg))
	r.GET("/", ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w = serve(r, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityHeadersAndSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeaders(), middleware.RequestSizeLimit(16))
	r.POST("/", ok)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
