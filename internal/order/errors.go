package order

import (
	"errors"
	"fmt"

	"dinepos/internal/models"
)

var (
	// ErrEmptyItems - order creation needs at least one line item.
	ErrEmptyItems = errors.New("At least one item required")

	// ErrNotFound - order or table missing, or owned by another tenant.
	// Tenant mismatches deliberately look identical to missing rows.
	ErrNotFound = errors.New("record not found")

	// ErrTableConflict - the table already holds a non-terminal order.
	ErrTableConflict = errors.New("table is already occupied by an open order")

	// ErrInvalidState - operation precondition not met (e.g. settling an
	// order that is not pending_payment).
	ErrInvalidState = errors.New("order is not in a valid state for this operation")

	// ErrNegativeTotal - a field update would push a money total below zero.
	ErrNegativeTotal = errors.New("order total cannot be negative")
)

// InvalidTransitionError carries the attempted edge so callers can tell the
// waiter exactly what was refused.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from '%s' to '%s'", e.From, e.To)
}

// IsInvalidTransition reports whether err is a refused status change.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
