package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
	// UnitPrice overrides the product's current price as the order-time
	// snapshot; when nil the current price is used.
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	SupplierID       string             `json:"supplier_id"       validate:"required,uuid"`
	ExpectedDelivery *string            `json:"expected_delivery"` // RFC 3339 date
	Notes            *string            `json:"notes"`
	Items            []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReceiveItemsRequest maps purchase item id → quantity arriving now.
// Zero means "no change for this item".
type ReceiveItemsRequest struct {
	Items map[string]int `json:"items" validate:"required,min=1"`
}

type OrderFilter struct {
	Status     string `form:"status"`
	SupplierID string `form:"supplier_id"`
	Date       string `form:"date"` // YYYY-MM-DD, matches order_date
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	ProductSKU       string          `json:"product_sku"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity int             `json:"received_quantity"`
	TotalPrice       decimal.Decimal `json:"total_price"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	OrderNumber      string              `json:"order_number"`
	SupplierID       string              `json:"supplier_id"`
	SupplierName     string              `json:"supplier_name"`
	OrderDate        string              `json:"order_date"`
	ExpectedDelivery *string             `json:"expected_delivery"`
	Status           string              `json:"status"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	Notes            *string             `json:"notes"`
	QRCodePath       *string             `json:"qr_code_path"`
	Items            []OrderItemResponse `json:"items"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
