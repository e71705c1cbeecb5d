package middleware

import (
	"errors"
	"strings"

	"go-inventory-orders/internal/handler"
	"go-inventory-orders/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth is middleware that validates the bearer token and sets the
// caller in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		// Token signature, token version and account state are checked against the store
		identity, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error(), "kind": "unavailable"})
			}
			return unauthorized(c, err.Error())
		}

		// Set user info in context for downstream handlers
		c.Locals(handler.LocalUserID, identity.UserID.String())
		c.Locals(handler.LocalUserName, identity.UserName)
		c.Locals(handler.LocalUserRole, identity.Role)
		c.Locals(handler.LocalIsSystem, identity.IsSystemAccount)

		return c.Next()
	}
}

// RequireRole checks the role set by RequireAuth
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if current, _ := c.Locals(handler.LocalUserRole).(string); current == role {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires '" + role + "' role",
			"kind":  "forbidden",
		})
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg, "kind": "unauthorized"})
}
