package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase order lifecycle. Pending is the only state that accepts receipts
// or cancellation; delivered and cancelled are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// PurchaseOrder is a request to a supplier for goods. TotalAmount is computed
// once at creation from the item snapshot prices and cached; items are owned
// and cascade-deleted with the order.
type PurchaseOrder struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber      string    `gorm:"uniqueIndex;not null"`
	SupplierID       uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderDate        time.Time `gorm:"not null"`
	ExpectedDelivery *time.Time
	Status           string          `gorm:"not null;default:'pending';index"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes            *string
	QRCodePath       *string `gorm:"column:qr_code_path"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Supplier *Supplier      `gorm:"foreignKey:SupplierID"`
	Items    []PurchaseItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// FullyReceived reports whether every line item has received at least its
// ordered quantity. Callers must have Items loaded.
func (o *PurchaseOrder) FullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.ReceivedQuantity < item.Quantity {
			return false
		}
	}
	return true
}

// PurchaseItem is one product line within an order. UnitPrice is a snapshot
// taken at order time and never tracks the product's current price.
// ReceivedQuantity is cumulative and only a receiving transaction may
// increment it; 0 <= ReceivedQuantity <= Quantity always.
type PurchaseItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity         int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TotalPrice is the ordered quantity times the snapshot unit price.
func (i *PurchaseItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Remaining is how many units can still be received for this line.
func (i *PurchaseItem) Remaining() int {
	return i.Quantity - i.ReceivedQuantity
}
