package service

import (
	"github.com/google/uuid"

	"go-inventory-orders/internal/model"
)

// Identity is the authenticated caller, resolved by the auth middleware.
type Identity struct {
	UserID          uuid.UUID
	UserName        string
	Role            string
	IsSystemAccount bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

func (i Identity) requireAdmin() error {
	if !i.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}
