// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNoOwner         = errors.New("cart owner requires a user or a session")
)

// Owner identifies whose cart is addressed: an authenticated user or an anonymous session
type Owner struct {
	UserID    uint
	SessionID string
}

// ForUser returns the owner handle of an authenticated user's cart
func ForUser(userID uint) Owner {
	return Owner{UserID: userID}
}

// ForSession returns the owner handle of an anonymous session's cart
func ForSession(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// IsGuest reports whether the cart belongs to an anonymous session
func (o Owner) IsGuest() bool {
	return o.UserID == 0
}

// Validate checks that one identity is populated
func (o Owner) Validate() error {
	if o.UserID == 0 && o.SessionID == "" {
		return ErrNoOwner
	}
	return nil
}

// String returns a stable key for logs and order references
func (o Owner) String() string {
	if o.IsGuest() {
		return "session:" + o.SessionID
	}
	return fmt.Sprintf("user:%d", o.UserID)
}

// Line is a stored product/quantity pair
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CartItem represents a cart line stored in the database for authenticated users
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// Item is a cart line priced against the current catalog
type Item struct {
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	ProductSlug  string `json:"product_slug"`
	UnitPrice    int64  `json:"unit_price"`
	UnitDiscount int64  `json:"unit_discount"`
	Quantity     int    `json:"quantity"`
}

// Price returns (price - discount) * quantity
func (i Item) Price() int64 {
	return (i.UnitPrice - i.UnitDiscount) * int64(i.Quantity)
}

// Cart is the priced view of an owner's lines
type Cart struct {
	Owner Owner  `json:"-"`
	Items []Item `json:"items"`
}

// TotalPrice sums the line prices; an empty cart totals zero
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price()
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartResponse represents the cart returned to clients
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	ItemCount     int                `json:"item_count"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    int64              `json:"total_price"`
}

// CartItemResponse represents a priced line returned to clients
type CartItemResponse struct {
	Item
	LineTotal int64 `json:"line_total"`
}

// ToResponse converts the cart for the API
func (c *Cart) ToResponse() *CartResponse {
	resp := &CartResponse{
		Items:      make([]CartItemResponse, 0, len(c.Items)),
		ItemCount:  len(c.Items),
		TotalPrice: c.TotalPrice(),
	}
	for _, item := range c.Items {
		resp.Items = append(resp.Items, CartItemResponse{Item: item, LineTotal: item.Price()})
		resp.TotalQuantity += item.Quantity
	}
	return resp
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,min=1,max=1000"`
}
