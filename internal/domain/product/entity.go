// internal/domain/product/entity.go
package product

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrDuplicateSlug      = errors.New("product slug already exists")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidDiscount    = errors.New("discount must be between zero and the price")
	ErrInvalidQuantity    = errors.New("quantity must not be negative")
)

// Product represents the product entity
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"`                                                        // smallest currency unit
	Discount    int64          `gorm:"not null;default:0" json:"discount"`                                           // absolute, per unit
	Quantity    int            `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0" json:"quantity"` // available stock
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// UnitPrice returns the price after the per-unit discount
func (p *Product) UnitPrice() int64 {
	return p.Price - p.Discount
}

// Validate checks the catalog invariants
func (p *Product) Validate() error {
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Discount < 0 || p.Discount > p.Price {
		return ErrInvalidDiscount
	}
	if p.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// CreateProductRequest represents the admin request to add a catalog entry
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"min=0"`
	Discount    int64  `json:"discount" binding:"min=0"`
	Quantity    int    `json:"quantity" binding:"min=0"`
}
