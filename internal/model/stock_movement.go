package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement types. "receiving" rows reference the purchase order that moved
// the stock; "manual_adjust" rows carry the operator-supplied reason.
const (
	MovementReceiving    = "receiving"
	MovementManualAdjust = "manual_adjust"
	MovementInitial      = "initial"
)

// StockMovement is the append-only audit row written alongside every change
// to a product's quantity_in_stock, so that receiving and manual edits stay
// distinguishable after the fact.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"not null"` // receiving | manual_adjust | initial
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // purchase order id when Type = receiving
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
