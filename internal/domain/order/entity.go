// internal/domain/order/entity.go
package order

import (
	"errors"
	"time"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cannot create an order from an empty cart")
	ErrOrderRequiresUser = errors.New("order requires an authenticated user")
	ErrDuplicateOrderID  = errors.New("order id already exists")
	ErrLockBusy          = errors.New("order is locked by another completion attempt")
)

// Order is an immutable snapshot of a cart tracked through payment and completion
type Order struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PublicID    string     `gorm:"uniqueIndex;not null;size:32" json:"order_id"`
	Slug        string     `gorm:"uniqueIndex;not null;size:64" json:"slug"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	CartRef     string     `gorm:"size:100" json:"cart_ref"` // owner of the cart at creation time
	IsPaid      bool       `gorm:"not null;default:false" json:"is_paid"`
	IsCompleted bool       `gorm:"not null;default:false;index" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []Item `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// Item is a line of the order snapshot, decoupled from the live cart
type Item struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	OrderID      uint   `gorm:"not null;index" json:"-"`
	ProductID    uint   `gorm:"not null;index" json:"product_id"`
	ProductName  string `gorm:"not null;size:255" json:"product_name"`
	UnitPrice    int64  `gorm:"not null" json:"unit_price"`
	UnitDiscount int64  `gorm:"not null;default:0" json:"unit_discount"`
	Quantity     int    `gorm:"not null" json:"quantity"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for Item
func (Item) TableName() string {
	return "order_items"
}

// Price returns (price - discount) * quantity
func (i Item) Price() int64 {
	return (i.UnitPrice - i.UnitDiscount) * int64(i.Quantity)
}

// TotalPrice sums the snapshot lines
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price()
	}
	return total
}

// Outcome classifies the result of a completion attempt
type Outcome string

const (
	OutcomeCompleted             Outcome = "completed"
	OutcomeAlreadyCompleted      Outcome = "already_completed"
	OutcomeInsufficientInventory Outcome = "insufficient_inventory"
	OutcomeBusy                  Outcome = "busy"
	OutcomeNotFound              Outcome = "not_found"
	OutcomeError                 Outcome = "error"
)

// CompletionResult is the explicit outcome of CompleteOrder
type CompletionResult struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	Item    *Item   `json:"item,omitempty"` // offending item for insufficient_inventory
	Err     error   `json:"-"`              // underlying failure for OutcomeError
}

// Done reports whether the order is completed after the attempt
func (r CompletionResult) Done() bool {
	return r.Outcome == OutcomeCompleted || r.Outcome == OutcomeAlreadyCompleted
}

// TotalResponse represents the order total returned to clients
type TotalResponse struct {
	OrderID    string `json:"order_id"`
	TotalPrice int64  `json:"total_price"`
}
