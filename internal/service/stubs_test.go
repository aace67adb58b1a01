package service_test

// In-memory repository stubs. Finders return copies so that service-side
// mutation of a loaded row never leaks into the "database" — writes only
// land through the explicit repository methods, the way GORM behaves.

import (
	"context"
	"errors"
	"strings"

	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

// ── OrderRepository stub ──────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder

	// failCreateWith makes the next Create call fail once with this error.
	failCreateWith error
	createCalls    int

	// onLockStatus runs just before LockStatusTx reads the stored row,
	// standing in for a concurrent transaction that commits between the
	// service's pre-flight read and its own transaction.
	onLockStatus func()
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.PurchaseOrder) error {
	r.createCalls++
	if r.failCreateWith != nil {
		err := r.failCreateWith
		r.failCreateWith = nil
		return err
	}
	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].PurchaseOrderID = o.ID
	}
	stored := copyOrder(o)
	r.orders[o.ID] = stored
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errNotFound
	}
	return copyOrder(o), nil
}

func (r *stubOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*model.PurchaseOrder, error) {
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return copyOrder(o), nil
		}
	}
	return nil, errNotFound
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var result []model.PurchaseOrder
	for _, o := range r.orders {
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		result = append(result, *copyOrder(o))
	}
	return result, int64(len(result)), nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.orders[id]; !ok {
		return errNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) UpdateQRPath(_ context.Context, id uuid.UUID, path string) error {
	o, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	o.QRCodePath = &path
	return nil
}

func (r *stubOrderRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) MonthlyTotals(_ context.Context, _ int) ([]repository.MonthlyPurchaseRow, error) {
	return nil, nil
}

func (r *stubOrderRepo) AddReceivedTx(_ *gorm.DB, itemID uuid.UUID, qty int) error {
	for _, o := range r.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items[i].ReceivedQuantity += qty
				return nil
			}
		}
	}
	return errNotFound
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) LockStatusTx(_ *gorm.DB, id uuid.UUID) (string, error) {
	if r.onLockStatus != nil {
		r.onLockStatus()
	}
	o, ok := r.orders[id]
	if !ok {
		return "", errNotFound
	}
	return o.Status, nil
}

func copyOrder(o *model.PurchaseOrder) *model.PurchaseOrder {
	cp := *o
	cp.Items = make([]model.PurchaseItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

// ── ProductRepository stub ────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var result []model.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.LowStock && !p.NeedsReorder() {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return errNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) UpdateQRPath(_ context.Context, id uuid.UUID, path string) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.QRCodePath = &path
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.QuantityInStock += delta
	return nil
}

func (r *stubProductRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.products)), nil
}

func (r *stubProductRepo) CountLowStock(_ context.Context) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.NeedsReorder() {
			n++
		}
	}
	return n, nil
}

func (r *stubProductRepo) ListLowStock(_ context.Context) ([]model.Product, error) {
	var result []model.Product
	for _, p := range r.products {
		if p.NeedsReorder() {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductRepo) InventoryValue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.products {
		total = total.Add(p.StockValue())
	}
	return total, nil
}

func (r *stubProductRepo) InventoryValueByCategory(_ context.Context) ([]repository.CategoryValueRow, error) {
	byCat := make(map[string]*repository.CategoryValueRow)
	for _, p := range r.products {
		row, ok := byCat[p.Category]
		if !ok {
			row = &repository.CategoryValueRow{Category: p.Category}
			byCat[p.Category] = row
		}
		row.Value = row.Value.Add(p.StockValue())
		row.Products++
	}
	var result []repository.CategoryValueRow
	for _, row := range byCat {
		result = append(result, *row)
	}
	return result, nil
}

// ── SupplierRepository stub ───────────────────────────────────────────────────

type stubSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSupplierRepo) List(_ context.Context, includeInactive bool) ([]model.Supplier, error) {
	var result []model.Supplier
	for _, s := range r.suppliers {
		if !includeInactive && !s.Active {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	if _, ok := r.suppliers[s.ID]; !ok {
		return errNotFound
	}
	cp := *s
	r.suppliers[s.ID] = &cp
	return nil
}

func (r *stubSupplierRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s, ok := r.suppliers[id]
	if !ok {
		return errNotFound
	}
	s.Active = false
	return nil
}

func (r *stubSupplierRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, s := range r.suppliers {
		if s.Active {
			n++
		}
	}
	return n, nil
}

// ── StockMovementRepository stub ──────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	return r.Create(context.Background(), m)
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var result []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		result = append(result, m)
	}
	return result, int64(len(result)), nil
}
