package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents one inventory item. SKU is the immutable business key
// surfaced in QR codes and exports; QuantityInStock is the live counter and
// may only be mutated through receiving or a logged manual adjustment.
type Product struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU             string    `gorm:"column:sku;uniqueIndex;not null"`
	Name            string    `gorm:"index;not null"`
	Description     *string
	Category        string          `gorm:"index"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	QuantityInStock int             `gorm:"not null;default:0;check:quantity_in_stock >= 0"`
	ReorderLevel    int             `gorm:"not null;default:5"`
	ReorderQuantity int             `gorm:"not null;default:10"`
	SupplierID      *uuid.UUID      `gorm:"type:uuid;index"`
	QRCodePath      *string         `gorm:"column:qr_code_path"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// StockValue is the current valuation of on-hand stock for this product.
func (p *Product) StockValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
}

// NeedsReorder reports whether on-hand stock is at or below the reorder level.
func (p *Product) NeedsReorder() bool {
	return p.QuantityInStock <= p.ReorderLevel
}
