package service

import (
	"slices"
	"time"

	"go-inventory-orders/internal/model"
)

var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:   {model.OrderConfirmed, model.OrderCancelled},
	model.OrderConfirmed: {model.OrderShipped, model.OrderCancelled},
	model.OrderShipped:   {model.OrderDelivered},
	model.OrderDelivered: nil,
	model.OrderCancelled: nil,
}

// ValidateTransition is the single source of truth for status changes; both
// the admin status endpoint and user cancellation go through it.
func ValidateTransition(from, to model.OrderStatus) error {
	if from.Terminal() {
		return ErrOrderImmutable
	}
	if !to.Valid() {
		return validationError("unknown order status %q", to)
	}
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to model.OrderStatus) bool {
	return slices.Contains(orderTransitions[from], to)
}

// checkCancellable gates the user cancel path: once the parcel has left, the
// owner can no longer cancel.
func checkCancellable(status model.OrderStatus) error {
	switch status {
	case model.OrderShipped, model.OrderDelivered, model.OrderCancelled:
		return ErrOrderNotCancellable
	}
	return ValidateTransition(status, model.OrderCancelled)
}

// checkQuantityEditable gates line quantity edits.
func checkQuantityEditable(status model.OrderStatus) error {
	switch status {
	case model.OrderDelivered:
		return ErrOrderImmutable
	case model.OrderShipped, model.OrderCancelled:
		return ErrOrderNotEditable
	}
	return nil
}

// checkAddressEditable gates shipping address edits; a shipped parcel may still be redirected.
func checkAddressEditable(status model.OrderStatus) error {
	switch status {
	case model.OrderDelivered:
		return ErrOrderImmutable
	case model.OrderCancelled:
		return ErrOrderNotEditable
	}
	return nil
}

// applyTransition sets the new status and stamps its timestamps.
func applyTransition(order *model.Order, to model.OrderStatus, now time.Time) model.OrderStatus {
	prev := order.Status
	order.Status = to
	order.UpdatedAt = &now
	switch to {
	case model.OrderConfirmed:
		order.ConfirmedAt = &now
	case model.OrderShipped:
		order.ShippedAt = &now
	case model.OrderDelivered:
		order.DeliveredAt = &now
	case model.OrderCancelled:
		order.CancelledAt = &now
	}
	return prev
}
