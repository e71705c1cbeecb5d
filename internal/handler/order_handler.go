package handler

import (
	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type updateLineRequest struct {
	Quantity int `json:"product_quantity"`
}

type updateAddressRequest struct {
	ShippingAddress string `json:"update_shipping_address"`
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"order_status"`
}

// CreateOrder handles order placement
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.CreateOrder(c.UserContext(), currentIdentity(c), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order_details": order})
}

// ListOrders returns customer orders (admin)
// GET /api/v1/orders?status=Pending
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), currentIdentity(c), model.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// ListOwnOrders returns the caller's orders
// GET /api/v1/orders/mine
func (h *OrderHandler) ListOwnOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOwnOrders(c.UserContext(), currentIdentity(c))
	if err != nil {
		return respondError(c, err)
	}
	if len(orders) == 0 {
		return c.JSON(fiber.Map{"message": "No orders placed yet", "data": orders})
	}
	return c.JSON(orders)
}

// GET /api/v1/orders/:orderId
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), currentIdentity(c), orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// PATCH /api/v1/orders/:orderId/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.CancelOrder(c.UserContext(), currentIdentity(c), orderID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// PATCH /api/v1/orders/:orderId/lines/:productId
func (h *OrderHandler) UpdateLineQuantity(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	productID, err := paramUUID(c, "productId")
	if err != nil {
		return respondError(c, err)
	}
	var req updateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.UpdateLineQuantity(c.UserContext(), currentIdentity(c), orderID, productID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// PATCH /api/v1/orders/:orderId/shipping-address
func (h *OrderHandler) UpdateShippingAddress(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	order, err := h.service.UpdateShippingAddress(c.UserContext(), currentIdentity(c), orderID, req.ShippingAddress)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// UpdateOrderStatus moves an order through its lifecycle (admin)
// PATCH /api/v1/orders/:orderId/status
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	change, err := h.service.UpdateOrderStatus(c.UserContext(), currentIdentity(c), orderID, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(change)
}

// ListOrderMovements returns the stock ledger rows written for one order (admin)
// GET /api/v1/orders/:orderId/movements
func (h *OrderHandler) ListOrderMovements(c *fiber.Ctx) error {
	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return respondError(c, err)
	}
	movements, err := h.service.ListOrderMovements(c.UserContext(), currentIdentity(c), orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}
