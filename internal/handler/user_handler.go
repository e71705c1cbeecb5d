package handler

import (
	"go-inventory-orders/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers lists user accounts, system accounts excluded
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext(), currentIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}
