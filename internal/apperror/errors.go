package apperror

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError: a referenced product/supplier/order/item does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func NotFound(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// DuplicateKeyError: SKU or order number collision on creation.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func Duplicate(field, value string) *DuplicateKeyError {
	return &DuplicateKeyError{Field: field, Value: value}
}

// InvalidStateError: an operation was attempted against an order that is not
// in the required state (e.g. receiving on a delivered or cancelled order).
type InvalidStateError struct {
	OrderNumber string
	Status      string
	Operation   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %s is %s: %s not permitted", e.OrderNumber, e.Status, e.Operation)
}

func InvalidState(orderNumber, status, operation string) *InvalidStateError {
	return &InvalidStateError{OrderNumber: orderNumber, Status: status, Operation: operation}
}

// QuantityExceededError: a receipt would push received_quantity above the
// ordered quantity for the named item. The whole receipt is rejected.
type QuantityExceededError struct {
	ItemID    uuid.UUID
	Requested int
	Remaining int
}

func (e *QuantityExceededError) Error() string {
	return fmt.Sprintf("item %s: receiving %d exceeds remaining %d", e.ItemID, e.Requested, e.Remaining)
}

// NoOpError: a receipt in which every line is zero. Receiving must record
// observable progress to be meaningful.
type NoOpError struct {
	Operation string
}

func (e *NoOpError) Error() string {
	return fmt.Sprintf("%s would have no effect", e.Operation)
}

// InvalidInputError: a caller-supplied value failed a domain check that
// schema-level validation cannot express (inactive supplier, negative
// quantity, malformed id inside a payload). Maps to 400, with the message
// surfaced to the caller.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

func InvalidInput(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Msg: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure so callers can distinguish infra
// errors from validation errors without inspecting driver types.
func Persistence(op string, err error) error {
	return fmt.Errorf("persistence: %s: %w", op, err)
}
