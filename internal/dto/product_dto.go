package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU             string          `json:"sku"              validate:"required,min=2,max=50"`
	Name            string          `json:"name"             validate:"required,min=2,max=120"`
	Description     *string         `json:"description"`
	Category        string          `json:"category"`
	UnitPrice       decimal.Decimal `json:"unit_price"       validate:"required"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"min=0"`
	ReorderLevel    int             `json:"reorder_level"    validate:"min=0"`
	ReorderQuantity int             `json:"reorder_quantity" validate:"min=0"`
	SupplierID      *string         `json:"supplier_id"      validate:"omitempty,uuid"`
}

// UpdateProductRequest deliberately has no SKU and no stock field: the SKU is
// immutable and stock only moves through receiving or AdjustStock.
type UpdateProductRequest struct {
	Name            *string          `json:"name"             validate:"omitempty,min=2,max=120"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	ReorderLevel    *int             `json:"reorder_level"    validate:"omitempty,min=0"`
	ReorderQuantity *int             `json:"reorder_quantity" validate:"omitempty,min=0"`
	SupplierID      *string          `json:"supplier_id"      validate:"omitempty,uuid"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3,max=250"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	SKU        string `form:"sku"`
	Name       string `form:"name"`
	Category   string `form:"category"`
	SupplierID string `form:"supplier_id"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	Category        string          `json:"category"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	QuantityInStock int             `json:"quantity_in_stock"`
	ReorderLevel    int             `json:"reorder_level"`
	ReorderQuantity int             `json:"reorder_quantity"`
	StockValue      decimal.Decimal `json:"stock_value"`
	NeedsReorder    bool            `json:"needs_reorder"`
	SupplierID      *string         `json:"supplier_id"`
	QRCodePath      *string         `json:"qr_code_path"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
