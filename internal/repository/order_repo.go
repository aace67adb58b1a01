package repository

import (
	"context"

	"stockroom/internal/dto"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MonthlyPurchaseRow is the aggregate returned by MonthlyTotals.
type MonthlyPurchaseRow struct {
	Month  string
	Orders int64
	Total  decimal.Decimal
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.PurchaseOrder, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateQRPath(ctx context.Context, id uuid.UUID, path string) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	MonthlyTotals(ctx context.Context, months int) ([]MonthlyPurchaseRow, error)

	// Used inside the receiving transaction — callers must pass the tx instance
	AddReceivedTx(tx *gorm.DB, itemID uuid.UUID, qty int) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	// LockStatusTx reloads the order's status under FOR UPDATE; the row stays
	// locked until the transaction commits, serializing receive vs cancel.
	LockStatusTx(tx *gorm.DB, id uuid.UUID) (string, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.PurchaseOrder) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var o model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("Supplier").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) FindByNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error) {
	var o model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("Supplier").
		Where("order_number = ?", orderNumber).
		First(&o).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(order_date) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").Preload("Supplier").
		Order("order_date DESC, order_number DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Items go with the order via ON DELETE CASCADE.
	return r.db.WithContext(ctx).Delete(&model.PurchaseOrder{}, id).Error
}

func (r *orderRepo) UpdateQRPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Where("id = ?", id).
		Update("qr_code_path", path).Error
}

func (r *orderRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("order_number LIKE ?", prefix+"%").Count(&n).Error
	return n, err
}

func (r *orderRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *orderRepo) MonthlyTotals(ctx context.Context, months int) ([]MonthlyPurchaseRow, error) {
	var rows []MonthlyPurchaseRow
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).
		Select("to_char(order_date, 'YYYY-MM') AS month, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS total").
		Where("order_date >= date_trunc('month', CURRENT_DATE) - make_interval(months => ?)", months-1).
		Where("status <> ?", model.OrderStatusCancelled).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *orderRepo) AddReceivedTx(tx *gorm.DB, itemID uuid.UUID, qty int) error {
	return tx.Model(&model.PurchaseItem{}).Where("id = ?", itemID).
		Update("received_quantity", gorm.Expr("received_quantity + ?", qty)).Error
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.PurchaseOrder{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) LockStatusTx(tx *gorm.DB, id uuid.UUID) (string, error) {
	var o model.PurchaseOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("status").First(&o, id).Error
	return o.Status, err
}
