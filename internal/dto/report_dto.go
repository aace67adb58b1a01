package dto

import "github.com/shopspring/decimal"

// SummaryResponse backs the dashboard header metrics.
type SummaryResponse struct {
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	ActiveSuppliers int64           `json:"active_suppliers"`
	PendingOrders   int64           `json:"pending_orders"`
	InventoryValue  decimal.Decimal `json:"inventory_value"`
}

type LowStockItem struct {
	ProductID       string `json:"product_id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	QuantityInStock int    `json:"quantity_in_stock"`
	ReorderLevel    int    `json:"reorder_level"`
	ReorderQuantity int    `json:"reorder_quantity"`
}

type CategoryValue struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
	Products int64           `json:"products"`
}

type MonthlyPurchases struct {
	Month  string          `json:"month"` // YYYY-MM
	Orders int64           `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

// LookupResponse resolves a scanned QR payload ("product:<sku>" or
// "order:<order_number>") to the referenced entity.
type LookupResponse struct {
	Kind    string           `json:"kind"` // product | order
	Product *ProductResponse `json:"product,omitempty"`
	Order   *OrderResponse   `json:"order,omitempty"`
}
