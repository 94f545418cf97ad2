// internal/domain/inventory/entity.go
package inventory

import (
	"errors"
	"time"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// MovementType represents the direction of a stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"  // restock, rollback
	MovementTypeOutbound MovementType = "outbound" // sale
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale     MovementReason = "sale"
	ReasonRollback MovementReason = "rollback"
	ReasonRestock  MovementReason = "restock"
)

// Reference identifies what caused a ledger change
type Reference struct {
	Reason MovementReason
	Ref    string // e.g. the order id
}

// Sale references a reduction made while completing an order
func Sale(orderID string) Reference {
	return Reference{Reason: ReasonSale, Ref: "order:" + orderID}
}

// Rollback references an increase that undoes a reduction of the same order
func Rollback(orderID string) Reference {
	return Reference{Reason: ReasonRollback, Ref: "order:" + orderID}
}

// Restock references a manual stock increase
func Restock(note string) Reference {
	return Reference{Reason: ReasonRestock, Ref: note}
}

// StockMovement is an audit record of an applied ledger change
type StockMovement struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProductID    uint           `gorm:"not null;index" json:"product_id"`
	MovementType MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason       MovementReason `gorm:"not null;size:20" json:"reason"`
	Quantity     int            `gorm:"not null" json:"quantity"`
	Reference    string         `gorm:"size:100;index" json:"reference"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName overrides the table name for StockMovement
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewMovement builds the audit record for a change of quantity units
func NewMovement(productID uint, mt MovementType, quantity int, ref Reference) StockMovement {
	return StockMovement{
		ProductID:    productID,
		MovementType: mt,
		Reason:       ref.Reason,
		Quantity:     quantity,
		Reference:    ref.Ref,
		CreatedAt:    time.Now().UTC(),
	}
}

// StockLevel is the current quantity of a product with its latest movements
type StockLevel struct {
	ProductID uint            `json:"product_id"`
	Available int             `json:"available"`
	Movements []StockMovement `json:"movements"`
}

// RestockRequest represents an admin stock increase
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Note     string `json:"note" binding:"max=90"`
}
