package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-inventory-orders/internal/events"
	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
	"go-inventory-orders/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, caller Identity, req *CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, caller Identity, orderID uuid.UUID) (*model.Order, error)
	CancelOrder(ctx context.Context, caller Identity, orderID uuid.UUID, reason string) (*model.Order, error)
	UpdateLineQuantity(ctx context.Context, caller Identity, orderID, productID uuid.UUID, quantity int) (*model.Order, error)
	UpdateShippingAddress(ctx context.Context, caller Identity, orderID uuid.UUID, address string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, caller Identity, orderID uuid.UUID, status model.OrderStatus) (*StatusChange, error)
	ListOrders(ctx context.Context, caller Identity, status model.OrderStatus) ([]model.Order, error)
	ListOwnOrders(ctx context.Context, caller Identity) ([]model.Order, error)
	ListOrderMovements(ctx context.Context, caller Identity, orderID uuid.UUID) ([]model.StockMovement, error)
}

type CreateOrderRequest struct {
	Products        []RequestedLine     `json:"products" validate:"required,min=1,dive"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"oneof='Credit Card' 'Debit Card' UPI NetBanking CashOnDelivery"`
	ShippingAddress string              `json:"shipping_address" validate:"notblank,max=500"`
}

// StatusChange is the result of an admin status update.
type StatusChange struct {
	OrderID   uuid.UUID         `json:"order_id"`
	OldStatus model.OrderStatus `json:"old_status"`
	NewStatus model.OrderStatus `json:"new_status"`
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	UnitOfWork repository.UnitOfWork
	Products   repository.ProductRepository
	Orders     repository.OrderRepository
	Movements  repository.StockMovementRepository
	Events     events.Publisher
	Logger     *zap.Logger
	Clock      func() time.Time
	NewID      func() uuid.UUID
}

type orderService struct {
	uow       repository.UnitOfWork
	products  repository.ProductRepository
	orders    repository.OrderRepository
	movements repository.StockMovementRepository
	pricing   *PricingEngine
	events    events.Publisher
	log       *zap.Logger
	clock     func() time.Time
}

func NewOrderService(deps OrderServiceDeps) OrderService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Events == nil {
		deps.Events = events.Nop
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &orderService{
		uow:       deps.UnitOfWork,
		products:  deps.Products,
		orders:    deps.Orders,
		movements: deps.Movements,
		pricing:   NewPricingEngine(deps.Products, deps.Clock, deps.NewID),
		events:    deps.Events,
		log:       deps.Logger.Named("orders"),
		clock:     deps.Clock,
	}
}

func (s *orderService) now() time.Time {
	return s.clock().UTC()
}

func (s *orderService) CreateOrder(ctx context.Context, caller Identity, req *CreateOrderRequest) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError("%s", errs[0])
	}

	order, err := s.pricing.PriceOrder(ctx, caller, req.Products)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = req.PaymentMethod
	order.ShippingAddress = strings.TrimSpace(req.ShippingAddress)

	// Reserve stock and persist in one unit: a failing line rolls back every
	// earlier reservation and nothing is inserted.
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		for _, line := range order.LineItems {
			if err := s.reserve(ctx, order.OrderID, line, line.Quantity, model.ReasonOrderReserved, caller.UserName); err != nil {
				return err
			}
		}
		return storeErr(s.orders.Insert(ctx, order), nil)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.OrderID.String()),
		zap.String("user_id", caller.UserID.String()),
		zap.Int("total_quantity", order.TotalQuantity),
		zap.String("total_price", order.TotalPrice.StringFixed(2)),
	)
	s.publish(ctx, events.Event{
		Type:      events.OrderCreated,
		OrderID:   order.OrderID.String(),
		UserID:    caller.UserID.String(),
		NewStatus: string(order.Status),
		Quantity:  order.TotalQuantity,
		Message:   fmt.Sprintf("%s placed an order of %d item(s)", caller.UserName, order.TotalQuantity),
	})
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, caller Identity, orderID uuid.UUID) (*model.Order, error) {
	if caller.IsAdmin() {
		order, err := s.orders.FindByID(ctx, orderID)
		return order, storeErr(err, ErrOrderNotFound)
	}
	order, err := s.orders.FindByIDAndUser(ctx, orderID, caller.UserID)
	return order, storeErr(err, ErrOrderNotFound)
}

func (s *orderService) CancelOrder(ctx context.Context, caller Identity, orderID uuid.UUID, reason string) (*model.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("reason is required")
	}

	var (
		cancelled *model.Order
		prev      model.OrderStatus
	)
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByIDAndUser(ctx, orderID, caller.UserID)
		if err != nil {
			return storeErr(err, ErrOrderNotFound)
		}
		if err := checkCancellable(order.Status); err != nil {
			return err
		}
		prev = order.Status
		if err := s.cancel(ctx, order, reason, caller); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order cancelled", zap.String("order_id", orderID.String()), zap.String("by", caller.UserName))
	s.publish(ctx, events.Event{
		Type:      events.OrderCancelled,
		OrderID:   orderID.String(),
		UserID:    caller.UserID.String(),
		OldStatus: string(prev),
		NewStatus: string(model.OrderCancelled),
		Message:   reason,
	})
	return cancelled, nil
}

func (s *orderService) UpdateLineQuantity(ctx context.Context, caller Identity, orderID, productID uuid.UUID, quantity int) (*model.Order, error) {
	if quantity < 1 {
		return nil, validationError("product_quantity must be at least 1")
	}

	var updated *model.Order
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByIDAndUser(ctx, orderID, caller.UserID)
		if err != nil {
			return storeErr(err, ErrOrderNotFound)
		}
		if err := checkQuantityEditable(order.Status); err != nil {
			return err
		}
		line := order.Line(productID)
		if line == nil {
			return ErrLineItemNotFound
		}

		delta := quantity - line.Quantity
		// Unit price stays frozen; only the quantity changes.
		line.Quantity = quantity
		order.Recalculate()
		now := s.now()
		order.UpdatedAt = &now

		if err := storeErr(s.orders.Update(ctx, order, order.Revision), ErrOrderNotFound); err != nil {
			return err
		}

		switch {
		case delta > 0:
			if err := s.reserve(ctx, order.OrderID, *line, delta, model.ReasonOrderAdjusted, caller.UserName); err != nil {
				return err
			}
		case delta < 0:
			if err := s.release(ctx, order.OrderID, *line, -delta, model.ReasonOrderAdjusted, caller.UserName); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.OrderUpdated,
		OrderID:   orderID.String(),
		UserID:    caller.UserID.String(),
		ProductID: productID.String(),
		Quantity:  quantity,
		Message:   "line quantity updated",
	})
	return updated, nil
}

func (s *orderService) UpdateShippingAddress(ctx context.Context, caller Identity, orderID uuid.UUID, address string) (*model.Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, validationError("update_shipping_address is required")
	}

	var updated *model.Order
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByIDAndUser(ctx, orderID, caller.UserID)
		if err != nil {
			return storeErr(err, ErrOrderNotFound)
		}
		if err := checkAddressEditable(order.Status); err != nil {
			return err
		}
		order.ShippingAddress = address
		now := s.now()
		order.UpdatedAt = &now
		if err := storeErr(s.orders.Update(ctx, order, order.Revision), ErrOrderNotFound); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.OrderUpdated,
		OrderID: orderID.String(),
		UserID:  caller.UserID.String(),
		Message: "shipping address updated",
	})
	return updated, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, caller Identity, orderID uuid.UUID, status model.OrderStatus) (*StatusChange, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationError("order_status must be one of Pending, Confirmed, Shipped, Delivered, Cancelled")
	}

	var change *StatusChange
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return storeErr(err, ErrOrderNotFound)
		}
		if err := ValidateTransition(order.Status, status); err != nil {
			return err
		}

		prev := order.Status
		if status == model.OrderCancelled {
			if err := s.cancel(ctx, order, "cancelled by administrator", caller); err != nil {
				return err
			}
		} else {
			applyTransition(order, status, s.now())
			if err := storeErr(s.orders.Update(ctx, order, order.Revision), ErrOrderNotFound); err != nil {
				return err
			}
		}
		change = &StatusChange{OrderID: order.OrderID, OldStatus: prev, NewStatus: order.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(change.OldStatus)),
		zap.String("to", string(change.NewStatus)),
		zap.String("by", caller.UserName),
	)
	s.publish(ctx, events.Event{
		Type:      events.OrderStatusChanged,
		OrderID:   orderID.String(),
		OldStatus: string(change.OldStatus),
		NewStatus: string(change.NewStatus),
	})
	return change, nil
}

// ListOrders lists customer orders, optionally narrowed to one status.
func (s *orderService) ListOrders(ctx context.Context, caller Identity, status model.OrderStatus) ([]model.Order, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, validationError("unknown order status %q", status)
	}
	orders, err := s.orders.FindAll(ctx, repository.OrderFilter{Status: status})
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *orderService) ListOwnOrders(ctx context.Context, caller Identity) ([]model.Order, error) {
	orders, err := s.orders.FindAllByUser(ctx, caller.UserID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// ListOrderMovements returns the reservations and releases recorded for an order, oldest first.
func (s *orderService) ListOrderMovements(ctx context.Context, caller Identity, orderID uuid.UUID) ([]model.StockMovement, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, storeErr(err, ErrOrderNotFound)
	}
	movements, err := s.movements.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if movements == nil {
		movements = []model.StockMovement{}
	}
	return movements, nil
}

// cancel moves order to Cancelled, writes it and returns its reserved stock.
// Must run inside a unit of work.
func (s *orderService) cancel(ctx context.Context, order *model.Order, reason string, caller Identity) error {
	applyTransition(order, model.OrderCancelled, s.now())
	order.CancellationReason = reason
	order.CancelledBy = caller.UserName

	if err := storeErr(s.orders.Update(ctx, order, order.Revision), ErrOrderNotFound); err != nil {
		return err
	}
	for _, line := range order.LineItems {
		if err := s.release(ctx, order.OrderID, line, line.Quantity, model.ReasonOrderReleased, caller.UserName); err != nil {
			return err
		}
	}
	return nil
}

// reserve takes qty units of line's product with a conditional decrement.
func (s *orderService) reserve(ctx context.Context, orderID uuid.UUID, line model.LineItem, qty int, reason, actor string) error {
	if qty < 1 {
		return validationError("reserved quantity must be at least 1, got %d", qty)
	}
	ok, err := s.products.DecrementIfAvailable(ctx, line.ProductID, qty)
	if err != nil {
		return storeErr(err, nil)
	}
	if !ok {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return storeErr(err, ErrProductNotFound)
		}
		if err := checkAvailable(product, qty); err != nil {
			return err
		}
		// Stock was sufficient on re-read: another writer raced us.
		return &InsufficientStockError{SKU: line.SKU, Requested: qty, Available: product.QuantityPresent}
	}
	return s.recordMovement(ctx, orderID, line, model.MovementOut, qty, reason, actor)
}

func (s *orderService) release(ctx context.Context, orderID uuid.UUID, line model.LineItem, qty int, reason, actor string) error {
	if qty < 1 {
		return validationError("released quantity must be at least 1, got %d", qty)
	}
	if err := s.products.IncrementStock(ctx, line.ProductID, qty); err != nil {
		return storeErr(err, ErrProductNotFound)
	}
	return s.recordMovement(ctx, orderID, line, model.MovementIn, qty, reason, actor)
}

func (s *orderService) recordMovement(ctx context.Context, orderID uuid.UUID, line model.LineItem, typ model.MovementType, qty int, reason, actor string) error {
	movement := &model.StockMovement{
		ProductID: line.ProductID,
		SKU:       line.SKU,
		OrderID:   &orderID,
		Type:      typ,
		Quantity:  qty,
		Reason:    reason,
	}
	movement.CreatedBy = actor
	movement.UpdatedBy = actor
	return storeErr(s.movements.Create(ctx, movement), nil)
}

// publish runs after commit; delivery failures never fail the request.
func (s *orderService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.now()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("order event not delivered", zap.String("type", event.Type), zap.Error(err))
	}
}
