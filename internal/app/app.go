// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/postgres"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-core/internal/infrastructure/memory"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"github.com/your-org/ecommerce-core/internal/pkg/identifier"
)

// App holds the services of the running application and the connections
// they depend on
type App struct {
	Users     *user.Service
	Products  *product.Service
	Inventory *inventory.Service
	Carts     *cart.Service
	Orders    *order.Service
	Payments  *payment.Service

	Tokens *auth.JWTManager
	// Limiter is nil when no Redis is configured
	Limiter *redis.RateLimiter

	checks  map[string]func(context.Context) error
	closers []func() error
}

type stores struct {
	products  product.Store
	ledger    inventory.Ledger
	history   inventory.History
	userCarts cart.Store
	guest     cart.Store
	orders    order.Store
	users     user.Store
	payments  payment.Store
}

// New connects the configured storage backend and builds the services
func New(cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	a := &App{
		Tokens: auth.NewJWTManager(cfg),
		checks: make(map[string]func(context.Context) error),
	}

	var (
		s   stores
		err error
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		s = a.memoryStores()
	case config.StorageDriverPostgres:
		s, err = a.postgresStores(cfg, log)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Products = product.NewService(s.products, log.WithField("component", "product"))
	a.Inventory = inventory.NewService(s.ledger, s.history, log.WithField("component", "inventory"))
	a.Carts = cart.NewService(s.userCarts, s.guest, a.Products, log.WithField("component", "cart"))
	a.Users = user.NewService(
		s.users,
		auth.NewPasswordManager(cfg),
		a.Tokens,
		user.NewAccrualPolicy(cfg.Loyalty),
		log.WithField("component", "user"),
	)
	a.Orders = order.NewService(
		s.orders,
		identifier.NewRandomGenerator(cfg.Order.IDLength),
		a.Users,
		order.Options{
			LockTimeout:      cfg.Order.LockTimeout,
			CurrencyPerPoint: cfg.Loyalty.CurrencyPerPoint,
			IDAttempts:       cfg.Order.CreateIDAttempts,
		},
		log.WithField("component", "order"),
	)
	a.Payments = payment.NewService(s.payments, a.Orders, log.WithField("component", "payment"))

	log.WithField("storage", cfg.Storage.Driver).Info("application services ready")
	return a, nil
}

func (a *App) memoryStores() stores {
	catalog := memory.NewCatalog()
	return stores{
		products:  catalog,
		ledger:    catalog,
		history:   catalog,
		userCarts: memory.NewCartStore(),
		guest:     memory.NewCartStore(),
		orders:    memory.NewOrderStore(catalog),
		users:     memory.NewUserStore(),
		payments:  memory.NewPaymentStore(),
	}
}

func (a *App) postgresStores(cfg *config.Config, log logrus.FieldLogger) (stores, error) {
	conn, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, conn.Close)
	a.checks["database"] = conn.Health

	db := conn.GetDB()
	migration := postgres.NewMigration(db, log.WithField("component", "migration"))
	if err := migration.RunAutoMigrations(); err != nil {
		return stores{}, fmt.Errorf("database migration failed: %w", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(user.NewAccrualPolicy(cfg.Loyalty)); err != nil {
			log.WithError(err).Warn("data seeding failed")
		}
	}

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, redisClient.Close)
	a.checks["redis"] = redisClient.Health
	a.Limiter = redis.NewRateLimiter(redisClient.GetClient(), time.Minute)

	ledger := postgres.NewLedger(db)
	return stores{
		products:  postgres.NewProductStore(db),
		ledger:    ledger,
		history:   ledger,
		userCarts: postgres.NewCartStore(db),
		guest:     redis.NewGuestCartStore(redisClient.GetClient(), cfg.Cart.GuestTTL),
		orders:    postgres.NewOrderStore(db, cfg.Order.CompleteRetries),
		users:     postgres.NewUserStore(db),
		payments:  postgres.NewPaymentStore(db),
	}, nil
}

// Health runs every dependency check and returns the failures by name
func (a *App) Health(ctx context.Context) map[string]error {
	failures := make(map[string]error)
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// Close releases the connections in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
