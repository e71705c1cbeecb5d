package handler

import (
	"errors"
	"fmt"

	"go-inventory-orders/internal/service"
	"go-inventory-orders/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys set by middleware.RequireAuth.
const (
	LocalUserID   = "user_id"
	LocalUserName = "user_name"
	LocalUserRole = "user_role"
	LocalIsSystem = "is_system"
)

// currentIdentity rebuilds the caller from the auth middleware's locals.
func currentIdentity(c *fiber.Ctx) service.Identity {
	var id service.Identity
	if v, ok := c.Locals(LocalUserID).(string); ok {
		id.UserID, _ = uuid.Parse(v)
	}
	id.UserName, _ = c.Locals(LocalUserName).(string)
	id.Role, _ = c.Locals(LocalUserRole).(string)
	id.IsSystemAccount, _ = c.Locals(LocalIsSystem).(bool)
	return id
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return id, nil
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON", "kind": "validation"})
}

// statusFor maps an error kind to its HTTP status and kind label.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrInvalidState):
		return fiber.StatusConflict, "invalid_state"
	case errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict, "conflict"
	case errors.Is(err, service.ErrUnavailable):
		return fiber.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrSessionRevoked),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized, "unauthorized"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}

// respondError writes err as {"error", "kind"}. Unclassified errors never
// leak their message.
func respondError(c *fiber.Ctx, err error) error {
	status, kind := statusFor(err)
	body := fiber.Map{"error": err.Error(), "kind": kind}
	if status == fiber.StatusInternalServerError {
		body["error"] = "Internal Server Error"
	}
	var ise *service.InsufficientStockError
	if errors.As(err, &ise) {
		body["sku"] = ise.SKU
		body["requested"] = ise.Requested
		body["available"] = ise.Available
	}
	return c.Status(status).JSON(body)
}
