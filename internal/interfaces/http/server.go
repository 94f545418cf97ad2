// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/routes"
)

const maxRequestBytes = 10 << 20

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	app        *app.App
	log        logrus.FieldLogger
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer builds the router for the given application
func NewServer(cfg *config.Config, application *app.App, log logrus.FieldLogger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		app:       application,
		log:       log,
		gin:       gin.New(),
		startedAt: time.Now(),
	}
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Warn("invalid trusted proxies, ignoring")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.log.WithFields(logrus.Fields{
		"port": s.config.Server.Port,
		"base": "/api/v1",
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())

	// Rate limiting needs Redis; the memory driver runs without it
	if s.app.Limiter != nil {
		s.gin.Use(middleware.RateLimit(s.app.Limiter, s.config.Security.RateLimitPerMinute, s.log))
	}

	s.gin.Use(middleware.RequestSizeLimit(maxRequestBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	sessions := handlers.NewSessionCookie(s.config.Cart.SessionCookie, s.config.Cart.GuestTTL, s.config.IsProduction())
	a := s.app

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, routes.Handlers{
		Auth:      handlers.NewAuthHandler(a.Users, a.Carts, sessions, s.log),
		Profile:   handlers.NewUserProfileHandler(a.Users),
		UserAdmin: handlers.NewUserAdminHandler(a.Users),
		Cart:      handlers.NewCartHandler(a.Carts, sessions),
		Order:     handlers.NewOrderHandler(a.Orders, a.Carts, retryAfterSeconds(s.config.Order.LockTimeout), s.log),
		Payment:   handlers.NewPaymentHandler(a.Payments, a.Orders, s.log),
		Product:   handlers.NewProductHandler(a.Products, a.Inventory),
	}, a.Tokens)
}

func retryAfterSeconds(d time.Duration) int {
	seconds := int(d / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if failures := s.app.Health(ctx); len(failures) > 0 {
		details := make(gin.H, len(failures))
		for name, err := range failures {
			details[name] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  details,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
		"storage":     s.config.Storage.Driver,
	})
}

func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
