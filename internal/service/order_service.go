package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService owns the purchase-order lifecycle: creation, receiving,
// cancellation. Receiving is the one code path allowed to move stock for
// ordered goods, and it is always a single database transaction.
type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	GetByNumber(ctx context.Context, orderNumber string) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Receive(ctx context.Context, id uuid.UUID, req dto.ReceiveItemsRequest) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	repo         repository.OrderRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		repo:         repo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		movementRepo: movementRepo,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// orderNumberAttempts bounds the retry loop for the PO-YYYYMMDD-NNN sequence.
// Two clients creating orders in the same instant can compute the same NNN;
// the unique constraint rejects the loser, which recounts and tries again.
const orderNumberAttempts = 3

// ── Create ────────────────────────────────────────────────────────────────────

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apperror.InvalidInput("invalid supplier_id: %v", err)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, apperror.NotFound("supplier", req.SupplierID)
	}
	if !supplier.Active {
		return nil, apperror.InvalidInput("supplier %s is inactive and cannot receive orders", supplier.Name)
	}

	var expected *time.Time
	if req.ExpectedDelivery != nil && *req.ExpectedDelivery != "" {
		t, err := parseDate(*req.ExpectedDelivery)
		if err != nil {
			return nil, apperror.InvalidInput("invalid expected_delivery: %v", err)
		}
		expected = &t
	}

	if len(req.Items) == 0 {
		return nil, apperror.InvalidInput("an order requires at least one item")
	}

	// Resolve products and snapshot prices (pre-flight, outside TX)
	type resolvedItem struct {
		productID uuid.UUID
		quantity  int
		unitPrice decimal.Decimal
	}
	var resolved []resolvedItem
	total := decimal.Zero
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.InvalidInput("invalid product_id: %v", err)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apperror.NotFound("product", item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, apperror.InvalidInput("item for product %s: quantity must be positive", p.SKU)
		}
		price := p.UnitPrice
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		resolved = append(resolved, resolvedItem{productID: pid, quantity: item.Quantity, unitPrice: price})
	}

	now := time.Now().UTC()
	prefix := "PO-" + now.Format("20060102") + "-"

	var order model.PurchaseOrder
	var lastNumber string
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		count, err := s.repo.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			return nil, apperror.Persistence("count order numbers", err)
		}
		lastNumber = fmt.Sprintf("%s%03d", prefix, count+1)

		order = model.PurchaseOrder{
			OrderNumber:      lastNumber,
			SupplierID:       supplierID,
			OrderDate:        now,
			ExpectedDelivery: expected,
			Status:           model.OrderStatusPending,
			TotalAmount:      total,
			Notes:            req.Notes,
		}
		for _, r := range resolved {
			order.Items = append(order.Items, model.PurchaseItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.unitPrice,
			})
		}

		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.Create(ctx, tx, &order)
		})
		if txErr == nil {
			break
		}
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			log.Warn().Str("order_number", lastNumber).Msg("order number collision, retrying")
			if attempt == orderNumberAttempts-1 {
				return nil, apperror.Duplicate("order_number", lastNumber)
			}
			continue
		}
		return nil, apperror.Persistence("create order", txErr)
	}

	s.enqueueCreationJobs(ctx, &order, supplier)

	return s.Get(ctx, order.ID)
}

// enqueueCreationJobs fires the async side effects of a new order: QR code
// generation and the confirmation email to the supplier. Best-effort —
// a full queue never fails the creation.
func (s *orderService) enqueueCreationJobs(ctx context.Context, order *model.PurchaseOrder, supplier *model.Supplier) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueQRCode(ctx, worker.QRCodeJobPayload{
		Entity: "order",
		ID:     order.ID.String(),
	}); err != nil {
		log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to enqueue QR job")
	}
	if supplier.Email != nil && *supplier.Email != "" {
		if err := s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
			ToEmail: *supplier.Email,
			Subject: fmt.Sprintf("Purchase order %s", order.OrderNumber),
			Body: fmt.Sprintf("Please find attached purchase order %s totalling $%s.",
				order.OrderNumber, order.TotalAmount.StringFixed(2)),
			OrderID: order.ID.String(),
		}); err != nil {
			log.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to enqueue email job")
		}
	}
}

// ── Receive ───────────────────────────────────────────────────────────────────
// One receipt = one database transaction:
//  1. all validation across all items (fail closed, no partial writes)
//  2. per received line: item.received_quantity += n, product stock += n,
//     one stock movement row
//  3. status recomputed — delivered iff every item is complete

func (s *orderService) Receive(ctx context.Context, id uuid.UUID, req dto.ReceiveItemsRequest) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("purchase order", id.String())
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperror.InvalidState(order.OrderNumber, order.Status, "receiving")
	}

	itemsByID := make(map[uuid.UUID]*model.PurchaseItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	// Validate the whole receipt before touching anything.
	receipts := make(map[uuid.UUID]int, len(req.Items))
	totalReceived := 0
	for rawID, n := range req.Items {
		itemID, err := uuid.Parse(rawID)
		if err != nil {
			return nil, apperror.InvalidInput("invalid item id %q: %v", rawID, err)
		}
		item, ok := itemsByID[itemID]
		if !ok {
			return nil, apperror.NotFound("purchase item", rawID)
		}
		if n < 0 {
			return nil, apperror.InvalidInput("item %s: receive quantity must be non-negative", rawID)
		}
		if n > item.Remaining() {
			return nil, &apperror.QuantityExceededError{
				ItemID:    itemID,
				Requested: n,
				Remaining: item.Remaining(),
			}
		}
		receipts[itemID] = n
		totalReceived += n
	}
	if totalReceived == 0 {
		return nil, &apperror.NoOpError{Operation: "receiving zero units"}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Re-check the status under a row lock: a cancel can commit between
		// the pre-flight read above and this transaction, and a receipt must
		// never move stock for (or re-open) a terminal order.
		status, err := s.repo.LockStatusTx(tx, order.ID)
		if err != nil {
			return err
		}
		if status != model.OrderStatusPending {
			return apperror.InvalidState(order.OrderNumber, status, "receiving")
		}

		// Iterate order.Items (not the map) for a deterministic write order.
		for i := range order.Items {
			item := &order.Items[i]
			n := receipts[item.ID]
			if n == 0 {
				continue
			}

			before, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			if err != nil {
				return err
			}
			if err := s.repo.AddReceivedTx(tx, item.ID, n); err != nil {
				return err
			}
			if err := s.productRepo.AdjustStockTx(tx, item.ProductID, n); err != nil {
				return err
			}

			orderRef := order.ID
			mov := &model.StockMovement{
				ProductID:   item.ProductID,
				Type:        model.MovementReceiving,
				Quantity:    n,
				StockBefore: before.QuantityInStock,
				StockAfter:  before.QuantityInStock + n,
				Reason:      fmt.Sprintf("Receipt for order %s", order.OrderNumber),
				ReferenceID: &orderRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}

			item.ReceivedQuantity += n
		}

		// Status is derived from item completeness inside the same
		// transaction, never read stale.
		if order.FullyReceived() {
			if err := s.repo.UpdateStatusTx(tx, order.ID, model.OrderStatusDelivered); err != nil {
				return err
			}
			order.Status = model.OrderStatusDelivered
		}
		return nil
	})
	if txErr != nil {
		var stateErr *apperror.InvalidStateError
		if errors.As(txErr, &stateErr) {
			return nil, txErr
		}
		return nil, apperror.Persistence("receive order items", txErr)
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Int("units", totalReceived).
		Str("status", order.Status).
		Msg("order receipt applied")

	return s.Get(ctx, order.ID)
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("purchase order", id.String())
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperror.InvalidState(order.OrderNumber, order.Status, "cancellation")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Same race as receiving: a receipt committing after the pre-flight
		// read may already have delivered the order.
		status, err := s.repo.LockStatusTx(tx, order.ID)
		if err != nil {
			return err
		}
		if status != model.OrderStatusPending {
			return apperror.InvalidState(order.OrderNumber, status, "cancellation")
		}
		return s.repo.UpdateStatusTx(tx, order.ID, model.OrderStatusCancelled)
	})
	if txErr != nil {
		var stateErr *apperror.InvalidStateError
		if errors.As(txErr, &stateErr) {
			return nil, txErr
		}
		return nil, apperror.Persistence("cancel order", txErr)
	}
	order.Status = model.OrderStatusCancelled
	return orderToResponse(order), nil
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperror.NotFound("purchase order", id.String())
	}
	// Delivered orders already moved stock; removing them would orphan the
	// movement history.
	if order.Status == model.OrderStatusDelivered {
		return apperror.InvalidState(order.OrderNumber, order.Status, "deletion")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Persistence("delete order", err)
	}
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("purchase order", id.String())
	}
	return orderToResponse(order), nil
}

func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, apperror.NotFound("purchase order", orderNumber)
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("list orders", err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Mapping helpers ───────────────────────────────────────────────────────────

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func orderToResponse(o *model.PurchaseOrder) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		sku, name := "", ""
		if item.Product != nil {
			sku = item.Product.SKU
			name = item.Product.Name
		}
		items = append(items, dto.OrderItemResponse{
			ID:               item.ID.String(),
			ProductID:        item.ProductID.String(),
			ProductSKU:       sku,
			ProductName:      name,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			ReceivedQuantity: item.ReceivedQuantity,
			TotalPrice:       item.TotalPrice(),
		})
	}

	supplierName := ""
	if o.Supplier != nil {
		supplierName = o.Supplier.Name
	}
	var expected *string
	if o.ExpectedDelivery != nil {
		v := o.ExpectedDelivery.Format("2006-01-02")
		expected = &v
	}
	return &dto.OrderResponse{
		ID:               o.ID.String(),
		OrderNumber:      o.OrderNumber,
		SupplierID:       o.SupplierID.String(),
		SupplierName:     supplierName,
		OrderDate:        o.OrderDate.Format(time.RFC3339),
		ExpectedDelivery: expected,
		Status:           o.Status,
		TotalAmount:      o.TotalAmount,
		Notes:            o.Notes,
		QRCodePath:       o.QRCodePath,
		Items:            items,
	}
}
