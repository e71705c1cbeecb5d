package service

import (
	"errors"
	"fmt"

	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("store unavailable")
)

var (
	ErrOrderNotFound       = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrLineItemNotFound    = fmt.Errorf("%w: product not found in order", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrProductInactive     = fmt.Errorf("%w: product is not active", ErrValidation)
	ErrInsufficientStock   = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrSKUExists           = fmt.Errorf("%w: sku already exists", ErrConflict)
	ErrUserNameExists      = fmt.Errorf("%w: user name already exists", ErrConflict)
	ErrConcurrentUpdate    = fmt.Errorf("%w: order was modified concurrently, reload and retry", ErrConflict)
	ErrOrderImmutable      = fmt.Errorf("%w: order has been delivered or cancelled", ErrInvalidState)
	ErrOrderNotEditable    = fmt.Errorf("%w: order can no longer be edited", ErrInvalidState)
	ErrOrderNotCancellable = fmt.Errorf("%w: order can no longer be cancelled", ErrInvalidState)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid status transition", ErrInvalidState)
	ErrAdminOnly           = fmt.Errorf("%w: admins only", ErrForbidden)
	ErrInvalidCredentials  = errors.New("invalid user name or password")
	ErrUserInactive        = errors.New("user account is inactive")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrSessionRevoked      = errors.New("session expired (logged in on another device)")
)

// InsufficientStockError reports how many units were requested and available.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: sku %q requested %d, available %d", ErrInsufficientStock, e.SKU, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr classifies a repository failure. notFound replaces ErrNotFound
// so callers surface the entity-specific error.
func storeErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrStaleRevision):
		return ErrConcurrentUpdate
	case isKind(err):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

func isKind(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrInvalidState, ErrValidation, ErrConflict, ErrUnavailable} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicateKey)
}
