package service

import (
	"context"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
)

// ReportService backs the dashboard and reporting endpoints. Read-only —
// it never feeds back into order or inventory state.
type ReportService interface {
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
	LowStock(ctx context.Context) ([]dto.LowStockItem, error)
	InventoryValueByCategory(ctx context.Context) ([]dto.CategoryValue, error)
	MonthlyPurchases(ctx context.Context, months int) ([]dto.MonthlyPurchases, error)
}

type reportService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	orderRepo    repository.OrderRepository
}

func NewReportService(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	orderRepo repository.OrderRepository,
) ReportService {
	return &reportService{productRepo: productRepo, supplierRepo: supplierRepo, orderRepo: orderRepo}
}

func (s *reportService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	totalProducts, err := s.productRepo.CountAll(ctx)
	if err != nil {
		return nil, apperror.Persistence("count products", err)
	}
	lowStock, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return nil, apperror.Persistence("count low stock", err)
	}
	activeSuppliers, err := s.supplierRepo.CountActive(ctx)
	if err != nil {
		return nil, apperror.Persistence("count suppliers", err)
	}
	pendingOrders, err := s.orderRepo.CountByStatus(ctx, model.OrderStatusPending)
	if err != nil {
		return nil, apperror.Persistence("count pending orders", err)
	}
	value, err := s.productRepo.InventoryValue(ctx)
	if err != nil {
		return nil, apperror.Persistence("inventory value", err)
	}
	return &dto.SummaryResponse{
		TotalProducts:   totalProducts,
		LowStockCount:   lowStock,
		ActiveSuppliers: activeSuppliers,
		PendingOrders:   pendingOrders,
		InventoryValue:  value,
	}, nil
}

func (s *reportService) LowStock(ctx context.Context) ([]dto.LowStockItem, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, apperror.Persistence("list low stock", err)
	}
	out := make([]dto.LowStockItem, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, dto.LowStockItem{
			ProductID:       p.ID.String(),
			SKU:             p.SKU,
			Name:            p.Name,
			QuantityInStock: p.QuantityInStock,
			ReorderLevel:    p.ReorderLevel,
			ReorderQuantity: p.ReorderQuantity,
		})
	}
	return out, nil
}

func (s *reportService) InventoryValueByCategory(ctx context.Context) ([]dto.CategoryValue, error) {
	rows, err := s.productRepo.InventoryValueByCategory(ctx)
	if err != nil {
		return nil, apperror.Persistence("inventory value by category", err)
	}
	out := make([]dto.CategoryValue, 0, len(rows))
	for _, row := range rows {
		category := row.Category
		if category == "" {
			category = "uncategorized"
		}
		out = append(out, dto.CategoryValue{Category: category, Value: row.Value, Products: row.Products})
	}
	return out, nil
}

func (s *reportService) MonthlyPurchases(ctx context.Context, months int) ([]dto.MonthlyPurchases, error) {
	if months < 1 || months > 36 {
		months = 12
	}
	rows, err := s.orderRepo.MonthlyTotals(ctx, months)
	if err != nil {
		return nil, apperror.Persistence("monthly purchase totals", err)
	}
	out := make([]dto.MonthlyPurchases, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.MonthlyPurchases{Month: row.Month, Orders: row.Orders, Total: row.Total})
	}
	return out, nil
}
