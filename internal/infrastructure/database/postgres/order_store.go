// internal/infrastructure/database/postgres/order_store.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStore persists orders. Completion holds a row lock on the order for
// the whole transaction, and the ledger changes join that transaction.
type OrderStore struct {
	db      *gorm.DB
	retries int
}

// NewOrderStore creates an order store; retries bounds how often a
// completion is rerun after a deadlock or serialization failure
func NewOrderStore(db *gorm.DB, retries int) *OrderStore {
	return &OrderStore{db: db, retries: retries}
}

// Create inserts the order with its items
func (s *OrderStore) Create(ctx context.Context, o *order.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&order.Order{}).
			Where("public_id = ? OR slug = ?", o.PublicID, o.Slug).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return order.ErrDuplicateOrderID
		}

		if err := tx.Create(o).Error; err != nil {
			if isUniqueViolation(err) {
				return order.ErrDuplicateOrderID
			}
			return err
		}
		return nil
	})
}

func (s *OrderStore) load(tx *gorm.DB, query string, arg any) (*order.Order, error) {
	var o order.Order
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id")
	}).Where(query, arg).First(&o).Error
	if err != nil {
		return nil, notFound(err, order.ErrOrderNotFound)
	}
	return &o, nil
}

// Get returns an order with its items
func (s *OrderStore) Get(ctx context.Context, id uint) (*order.Order, error) {
	return s.load(s.db.WithContext(ctx), "id = ?", id)
}

// GetBySlug returns an order by its slug
func (s *OrderStore) GetBySlug(ctx context.Context, slug string) (*order.Order, error) {
	return s.load(s.db.WithContext(ctx), "slug = ?", slug)
}

// ListByUser returns the user's orders, newest first
func (s *OrderStore) ListByUser(ctx context.Context, userID uint) ([]order.Order, error) {
	var orders []order.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// MarkPaid flags the order as paid
func (s *OrderStore) MarkPaid(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ?", id).
		Update("is_paid", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// lockTimeoutStatement rounds wait up to whole milliseconds, at least one:
// PostgreSQL reads a lock_timeout of 0 as no limit. SET takes no bind parameters.
func lockTimeoutStatement(wait time.Duration) string {
	ms := (wait + time.Millisecond - 1) / time.Millisecond
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}

// WithExclusiveLock runs fn in a transaction holding SELECT ... FOR UPDATE on
// the order row. On PostgreSQL the wait is bounded by lock_timeout and a
// timeout is reported as order.ErrLockBusy.
func (s *OrderStore) WithExclusiveLock(ctx context.Context, id uint, wait time.Duration, fn func(order.Locked) error) error {
	err := withRetry(ctx, s.retries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if isPostgres(tx) {
				if err := tx.Exec(lockTimeoutStatement(wait)).Error; err != nil {
					return err
				}
			}

			lockQuery := tx
			if isPostgres(tx) {
				lockQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			var row order.Order
			if err := lockQuery.Select("id").Where("id = ?", id).First(&row).Error; err != nil {
				return notFound(err, order.ErrOrderNotFound)
			}

			o, err := s.load(tx, "id = ?", id)
			if err != nil {
				return err
			}

			return fn(&lockedOrder{tx: tx, order: o})
		})
	})
	if isLockTimeout(err) {
		return order.ErrLockBusy
	}
	return err
}

type lockedOrder struct {
	tx    *gorm.DB
	order *order.Order
}

func (l *lockedOrder) Order() *order.Order {
	return l.order
}

func (l *lockedOrder) Inventory() inventory.Ledger {
	return NewLedger(l.tx)
}

func (l *lockedOrder) MarkCompleted(ctx context.Context) error {
	now := time.Now().UTC()
	err := l.tx.WithContext(ctx).Model(&order.Order{}).
		Where("id = ?", l.order.ID).
		Updates(map[string]any{
			"is_completed": true,
			"completed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return err
	}
	l.order.IsCompleted = true
	l.order.CompletedAt = &now
	return nil
}
