// internal/infrastructure/database/postgres/cart_store.go
package postgres

import (
	"context"
	"time"

	"github.com/your-org/ecommerce-core/internal/domain/cart"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartStore keeps the carts of authenticated users in cart_items
type CartStore struct {
	db *gorm.DB
}

// NewCartStore creates a user cart store
func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

// Lines returns the cart lines ordered by product id
func (s *CartStore) Lines(ctx context.Context, owner cart.Owner) ([]cart.Line, error) {
	var items []cart.CartItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", owner.UserID).
		Order("product_id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, cart.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines, nil
}

// Add upserts the line, incrementing the quantity of an existing one
func (s *CartStore) Add(ctx context.Context, owner cart.Owner, productID uint, quantity int) error {
	now := time.Now().UTC()
	item := cart.CartItem{
		UserID:    owner.UserID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": now,
		}),
	}).Create(&item).Error
}

// Remove deletes the line if present
func (s *CartStore) Remove(ctx context.Context, owner cart.Owner, productID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", owner.UserID, productID).
		Delete(&cart.CartItem{}).Error
}

// Clear deletes every line of the cart
func (s *CartStore) Clear(ctx context.Context, owner cart.Owner) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", owner.UserID).
		Delete(&cart.CartItem{}).Error
}
