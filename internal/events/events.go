package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types.
const (
	OrderCreated       = "order.created"
	OrderUpdated       = "order.updated"
	OrderCancelled     = "order.cancelled"
	OrderStatusChanged = "order.status.changed"
	ProductCreated     = "product.created"
	ProductUpdated     = "product.updated"
	ProductDeleted     = "product.deleted"
)

// Event is the payload broadcast to live clients and the message bus.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	ProductID  string    `json:"product_id,omitempty"`
	SKU        string    `json:"sku,omitempty"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key is the partitioning key: order id when present, otherwise product id.
func (e Event) Key() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.ProductID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

// Nop discards every event.
var Nop Publisher = nop{}

type multi struct {
	publishers []Publisher
	log        *zap.Logger
}

// Multi fans an event out to every publisher. Individual failures are logged
// and the remaining publishers still receive the event.
func Multi(log *zap.Logger, publishers ...Publisher) Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &multi{publishers: publishers, log: log}
}

func (m *multi) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			m.log.Warn("publish event failed", zap.String("type", event.Type), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
