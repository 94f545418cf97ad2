// internal/infrastructure/database/postgres/ledger.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/ecommerce-core/internal/domain/inventory"
	"github.com/your-org/ecommerce-core/internal/domain/product"
	"gorm.io/gorm"
)

// Ledger keeps product stock in the products table and audits every change
// in stock_movements. Bound to a transaction it joins that transaction.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a ledger on db
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Reduce decrements the stock in a single conditional update, so two
// concurrent reductions can never take the quantity below zero
func (l *Ledger) Reduce(ctx context.Context, productID uint, quantity int, ref inventory.Reference) (bool, error) {
	if quantity <= 0 {
		return false, inventory.ErrInvalidQuantity
	}

	applied := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&product.Product{}).
			Where("id = ? AND quantity >= ?", productID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return productExists(tx, productID)
		}

		applied = true
		m := inventory.NewMovement(productID, inventory.MovementTypeOutbound, quantity, ref)
		return tx.Create(&m).Error
	})
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to reduce stock: %w", err)
	}

	return applied, nil
}

// Increase adds quantity units to the stock
func (l *Ledger) Increase(ctx context.Context, productID uint, quantity int, ref inventory.Reference) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&product.Product{}).
			Where("id = ?", productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return product.ErrProductNotFound
		}

		m := inventory.NewMovement(productID, inventory.MovementTypeInbound, quantity, ref)
		return tx.Create(&m).Error
	})
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("failed to increase stock: %w", err)
	}

	return nil
}

// Available returns the current stock of a product
func (l *Ledger) Available(ctx context.Context, productID uint) (int, error) {
	var p product.Product
	err := l.db.WithContext(ctx).Select("id", "quantity").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, product.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}
	return p.Quantity, nil
}

// Movements returns the latest movements of a product, newest first
func (l *Ledger) Movements(ctx context.Context, productID uint, limit int) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	query := l.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func productExists(tx *gorm.DB, productID uint) error {
	var count int64
	if err := tx.Model(&product.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return product.ErrProductNotFound
	}
	return nil
}
