package service_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	svc       service.OrderService
	orders    *stubOrderRepo
	products  *stubProductRepo
	suppliers *stubSupplierRepo
	movements *stubMovementRepo

	supplier *model.Supplier
	widgetA  *model.Product
	widgetB  *model.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	orders := newStubOrderRepo()
	products := newStubProductRepo()
	suppliers := newStubSupplierRepo()
	movements := newStubMovementRepo()

	email := "orders@acme.example"
	supplier := &model.Supplier{Name: "Acme Wholesale", Email: &email, Active: true}
	require.NoError(t, suppliers.Create(context.Background(), supplier))

	widgetA := &model.Product{
		SKU:             "WID-A",
		Name:            "Widget A",
		Category:        "widgets",
		UnitPrice:       decimal.NewFromFloat(4.50),
		QuantityInStock: 100,
		ReorderLevel:    10,
	}
	widgetB := &model.Product{
		SKU:             "WID-B",
		Name:            "Widget B",
		Category:        "widgets",
		UnitPrice:       decimal.NewFromFloat(7.25),
		QuantityInStock: 50,
		ReorderLevel:    10,
	}
	require.NoError(t, products.Create(context.Background(), widgetA))
	require.NoError(t, products.Create(context.Background(), widgetB))

	return &orderFixture{
		svc:       service.NewOrderService(orders, products, suppliers, movements, nil),
		orders:    orders,
		products:  products,
		suppliers: suppliers,
		movements: movements,
		supplier:  supplier,
		widgetA:   widgetA,
		widgetB:   widgetB,
	}
}

// createOrder places an order with the given quantities of widget A and B.
func (f *orderFixture) createOrder(t *testing.T, qtyA, qtyB int) *dto.OrderResponse {
	t.Helper()
	var items []dto.OrderItemRequest
	if qtyA > 0 {
		items = append(items, dto.OrderItemRequest{ProductID: f.widgetA.ID.String(), Quantity: qtyA})
	}
	if qtyB > 0 {
		items = append(items, dto.OrderItemRequest{ProductID: f.widgetB.ID.String(), Quantity: qtyB})
	}
	resp, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items:      items,
	})
	require.NoError(t, err)
	return resp
}

func (f *orderFixture) itemID(resp *dto.OrderResponse, productID uuid.UUID) string {
	for _, item := range resp.Items {
		if item.ProductID == productID.String() {
			return item.ID
		}
	}
	return ""
}

// ── Creation ──────────────────────────────────────────────────────────────────

func TestCreateOrder_NumberFormatAndTotal(t *testing.T) {
	f := newOrderFixture(t)

	resp := f.createOrder(t, 10, 5)

	wantNumber := fmt.Sprintf("PO-%s-001", time.Now().UTC().Format("20060102"))
	assert.Equal(t, wantNumber, resp.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, resp.Status)
	// 10 * 4.50 + 5 * 7.25 = 81.25, from snapshot prices
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromFloat(81.25)),
		"got total %s", resp.TotalAmount)

	second := f.createOrder(t, 1, 0)
	assert.Equal(t, fmt.Sprintf("PO-%s-002", time.Now().UTC().Format("20060102")), second.OrderNumber)
}

func TestCreateOrder_RetriesOnNumberCollision(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.failCreateWith = gorm.ErrDuplicatedKey

	resp := f.createOrder(t, 2, 0)

	assert.Equal(t, 2, f.orders.createCalls)
	assert.Equal(t, model.OrderStatusPending, resp.Status)
}

func TestCreateOrder_PriceOverrideSnapshot(t *testing.T) {
	f := newOrderFixture(t)

	override := decimal.NewFromFloat(3.99)
	resp, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items: []dto.OrderItemRequest{
			{ProductID: f.widgetA.ID.String(), Quantity: 4, UnitPrice: &override},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].UnitPrice.Equal(override))
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromFloat(15.96)))
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
	})
	require.Error(t, err)
}

func TestCreateOrder_RejectsInactiveSupplier(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.suppliers.Deactivate(context.Background(), f.supplier.ID))

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items:      []dto.OrderItemRequest{{ProductID: f.widgetA.ID.String(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestCreateOrder_RejectsUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items:      []dto.OrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	var nf *apperror.NotFoundError
	require.ErrorAs(t, err, &nf)
}

// ── Receiving ─────────────────────────────────────────────────────────────────

func TestReceive_FullReceiptDeliversOrder(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 5)
	orderID := uuid.MustParse(resp.ID)

	// Complete B first; order must stay pending.
	partial, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetB.ID): 5},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, partial.Status)

	// Receiving the remaining A lines flips the order to delivered.
	final, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): 10},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, final.Status)

	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	stockB, _ := f.products.FindByID(context.Background(), f.widgetB.ID)
	assert.Equal(t, 110, stockA.QuantityInStock)
	assert.Equal(t, 55, stockB.QuantityInStock)
}

func TestReceive_PartialKeepsPending(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 0)
	orderID := uuid.MustParse(resp.ID)
	itemA := f.itemID(resp, f.widgetA.ID)

	first, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{itemA: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, first.Status)
	assert.Equal(t, 3, first.Items[0].ReceivedQuantity)

	second, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{itemA: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, second.Status)
	assert.Equal(t, 7, second.Items[0].ReceivedQuantity)

	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 107, stockA.QuantityInStock)
}

func TestReceive_OverReceiptRejectedWithoutMutation(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 0)
	orderID := uuid.MustParse(resp.ID)
	itemA := f.itemID(resp, f.widgetA.ID)

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{itemA: 3},
	})
	require.NoError(t, err)

	// 8 > remaining 7 — the whole receipt must be rejected.
	_, err = f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{itemA: 8},
	})
	var qe *apperror.QuantityExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 8, qe.Requested)
	assert.Equal(t, 7, qe.Remaining)

	after, err := f.svc.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.Items[0].ReceivedQuantity)
	assert.Equal(t, model.OrderStatusPending, after.Status)
	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 103, stockA.QuantityInStock)
}

func TestReceive_MixedValidAndInvalidRejectsAll(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 5)
	orderID := uuid.MustParse(resp.ID)

	// A is fine, B exceeds its remaining; neither may be applied.
	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{
			f.itemID(resp, f.widgetA.ID): 2,
			f.itemID(resp, f.widgetB.ID): 6,
		},
	})
	var qe *apperror.QuantityExceededError
	require.ErrorAs(t, err, &qe)

	after, _ := f.svc.Get(context.Background(), orderID)
	for _, item := range after.Items {
		assert.Equal(t, 0, item.ReceivedQuantity)
	}
	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 100, stockA.QuantityInStock)
}

func TestReceive_ZeroUnitsIsNoOp(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 0)
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): 0},
	})
	var noop *apperror.NoOpError
	require.ErrorAs(t, err, &noop)
}

func TestReceive_UnknownItemRejected(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 0)
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{uuid.NewString(): 1},
	})
	var nf *apperror.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestReceive_TerminalStatesRejected(t *testing.T) {
	f := newOrderFixture(t)

	// Cancelled order
	cancelled := f.createOrder(t, 5, 0)
	cancelledID := uuid.MustParse(cancelled.ID)
	_, err := f.svc.Cancel(context.Background(), cancelledID)
	require.NoError(t, err)

	_, err = f.svc.Receive(context.Background(), cancelledID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(cancelled, f.widgetA.ID): 1},
	})
	var ise *apperror.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.OrderStatusCancelled, ise.Status)

	// Delivered order
	delivered := f.createOrder(t, 2, 0)
	deliveredID := uuid.MustParse(delivered.ID)
	_, err = f.svc.Receive(context.Background(), deliveredID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(delivered, f.widgetA.ID): 2},
	})
	require.NoError(t, err)

	_, err = f.svc.Receive(context.Background(), deliveredID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(delivered, f.widgetA.ID): 1},
	})
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.OrderStatusDelivered, ise.Status)

	// Stock unchanged by the rejected receipts: 100 + 2 from the delivery.
	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 102, stockA.QuantityInStock)
}

func TestReceive_WritesMovementLedger(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 10, 0)
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): 4},
	})
	require.NoError(t, err)

	require.Len(t, f.movements.movements, 1)
	mov := f.movements.movements[0]
	assert.Equal(t, model.MovementReceiving, mov.Type)
	assert.Equal(t, f.widgetA.ID, mov.ProductID)
	assert.Equal(t, 4, mov.Quantity)
	assert.Equal(t, 100, mov.StockBefore)
	assert.Equal(t, 104, mov.StockAfter)
	require.NotNil(t, mov.ReferenceID)
	assert.Equal(t, orderID, *mov.ReferenceID)
}

// ── Cancellation and deletion ─────────────────────────────────────────────────

func TestCancel_PendingOnly(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 3, 0)
	orderID := uuid.MustParse(resp.ID)

	cancelled, err := f.svc.Cancel(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	// Cancelling twice is an invalid transition.
	_, err = f.svc.Cancel(context.Background(), orderID)
	var ise *apperror.InvalidStateError
	require.ErrorAs(t, err, &ise)

	// Cancellation never touches stock.
	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 100, stockA.QuantityInStock)
}

func TestDelete_DeliveredOrdersProtected(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 2, 0)
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): 2},
	})
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), orderID)
	var ise *apperror.InvalidStateError
	require.ErrorAs(t, err, &ise)

	// Pending orders delete fine.
	pending := f.createOrder(t, 1, 0)
	require.NoError(t, f.svc.Delete(context.Background(), uuid.MustParse(pending.ID)))
	_, err = f.svc.Get(context.Background(), uuid.MustParse(pending.ID))
	var nf *apperror.NotFoundError
	require.ErrorAs(t, err, &nf)
}

// ── Status races ──────────────────────────────────────────────────────────────
// The pre-flight status check reads outside the transaction, so a concurrent
// cancel (or receipt) can commit in between. The transaction re-reads the
// status under a row lock; these tests flip the stored status at exactly that
// point to stand in for the competing commit.

func TestReceive_RejectsCancelCommittedAfterPreflight(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 5, 0)
	orderID := uuid.MustParse(resp.ID)

	f.orders.onLockStatus = func() {
		f.orders.orders[orderID].Status = model.OrderStatusCancelled
	}

	_, err := f.svc.Receive(context.Background(), orderID, dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): 5},
	})
	var ise *apperror.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.OrderStatusCancelled, ise.Status)

	// Nothing moved: no stock, no received quantities, no ledger rows, and
	// the cancelled order was not flipped to delivered.
	stockA, _ := f.products.FindByID(context.Background(), f.widgetA.ID)
	assert.Equal(t, 100, stockA.QuantityInStock)
	stored := f.orders.orders[orderID]
	assert.Equal(t, model.OrderStatusCancelled, stored.Status)
	assert.Equal(t, 0, stored.Items[0].ReceivedQuantity)
	assert.Empty(t, f.movements.movements)
}

func TestCancel_RejectsDeliveryCommittedAfterPreflight(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 2, 0)
	orderID := uuid.MustParse(resp.ID)

	f.orders.onLockStatus = func() {
		f.orders.orders[orderID].Status = model.OrderStatusDelivered
	}

	_, err := f.svc.Cancel(context.Background(), orderID)
	var ise *apperror.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.OrderStatusDelivered, ise.Status)
	assert.Equal(t, model.OrderStatusDelivered, f.orders.orders[orderID].Status)
}

// ── Caller-error mapping ──────────────────────────────────────────────────────
// Domain validation failures must surface as 4xx with their message, never as
// an opaque 500.

func TestReceive_NegativeQuantityIsBadRequest(t *testing.T) {
	f := newOrderFixture(t)
	resp := f.createOrder(t, 3, 0)

	_, err := f.svc.Receive(context.Background(), uuid.MustParse(resp.ID), dto.ReceiveItemsRequest{
		Items: map[string]int{f.itemID(resp, f.widgetA.ID): -1},
	})
	var inv *apperror.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
}

func TestCreateOrder_InactiveSupplierIsBadRequest(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.suppliers.Deactivate(context.Background(), f.supplier.ID))

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items:      []dto.OrderItemRequest{{ProductID: f.widgetA.ID.String(), Quantity: 1}},
	})
	var inv *apperror.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
}

func TestCreateOrder_NonPositiveQuantityIsBadRequest(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		SupplierID: f.supplier.ID.String(),
		Items:      []dto.OrderItemRequest{{ProductID: f.widgetA.ID.String(), Quantity: 0}},
	})
	var inv *apperror.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, http.StatusBadRequest, apperror.StatusCode(err))
}
