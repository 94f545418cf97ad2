// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"github.com/your-org/ecommerce-core/internal/domain/payment"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"github.com/your-org/ecommerce-core/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("running database auto-migrations")

	// Dependency order
	models := []any{
		&user.User{},
		&user.Address{},

		&product.Product{},
		&inventory.StockMovement{},

		&cart.CartItem{},

		&order.Order{},
		&order.Item{},

		&payment.Payment{},
	}

	for _, model := range models {
		m.log.Debugf("migrating model %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the hot queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_completed ON orders(user_id, is_completed)",
		"CREATE INDEX IF NOT EXISTS idx_payments_user_created ON payments(user_id, created_at DESC)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")
	return nil
}

// SeedInitialData inserts an admin account and a few products for local
// development. The admin goes through the same pre-write step as every user save.
func (m *Migration) SeedInitialData(policy user.AccrualPolicy) error {
	if err := m.seedAdminUser(policy); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.log.Info("initial data seeded")
	return nil
}

func (m *Migration) seedAdminUser(policy user.AccrualPolicy) error {
	var existing user.User
	err := m.db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		m.log.Debug("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Username:  "admin",
		Slug:      "admin",
		Email:     "admin@example.com",
		Password:  string(hashedPassword),
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
		IsAdmin:   true,
		Address:   &user.Address{},
	}
	if _, err := policy.Prepare(&admin); err != nil {
		return err
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	m.log.WithField("username", admin.Username).Info("created admin user")
	return nil
}

func (m *Migration) seedProducts() error {
	products := []product.Product{
		{Name: "Espresso Cup", Slug: "espresso-cup", Price: 120000, Discount: 20000, Quantity: 50, IsActive: true},
		{Name: "Moka Pot", Slug: "moka-pot", Price: 950000, Quantity: 10, IsActive: true},
		{Name: "Coffee Beans 1kg", Slug: "coffee-beans-1kg", Price: 640000, Discount: 40000, Quantity: 25, IsActive: true},
	}

	for i := range products {
		p := products[i]
		var count int64
		if err := m.db.Model(&product.Product{}).Where("slug = ?", p.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := m.db.Create(&p).Error; err != nil {
			return err
		}
		m.log.WithField("slug", p.Slug).Info("created product")
	}

	return nil
}
