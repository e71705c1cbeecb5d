package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go-inventory-orders/internal/model"

	"github.com/google/uuid"
)

// CatalogReader is the read side of the catalog the pricing engine needs.
type CatalogReader interface {
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
}

// RequestedLine is one {sku, quantity} pair of a create-order request.
type RequestedLine struct {
	SKU      string `json:"sku" validate:"notblank"`
	Quantity int    `json:"product_quantity" validate:"min=1"`
}

// PricingEngine resolves requested lines against the live catalog and
// produces a priced Pending order. It never writes.
type PricingEngine struct {
	catalog CatalogReader
	clock   func() time.Time
	newID   func() uuid.UUID
}

func NewPricingEngine(catalog CatalogReader, clock func() time.Time, newID func() uuid.UUID) *PricingEngine {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = uuid.New
	}
	return &PricingEngine{catalog: catalog, clock: clock, newID: newID}
}

// PriceOrder validates every line before returning; any failing line aborts
// the whole order.
func (e *PricingEngine) PriceOrder(ctx context.Context, requester Identity, lines []RequestedLine) (*model.Order, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderID:         e.newID(),
		UserID:          requester.UserID,
		UserName:        requester.UserName,
		IsSystemAccount: requester.IsSystemAccount,
		Status:          model.OrderPending,
		PaymentStatus:   model.PaymentPending,
		CreatedAt:       e.clock().UTC(),
		LineItems:       make([]model.LineItem, 0, len(merged)),
	}

	for _, line := range merged {
		product, err := e.catalog.FindBySKU(ctx, line.SKU)
		if err != nil {
			return nil, storeErr(err, ErrProductNotFound)
		}
		if err := checkAvailable(product, line.Quantity); err != nil {
			return nil, err
		}
		order.LineItems = append(order.LineItems, model.LineItem{
			ProductID:   product.ID,
			SKU:         product.SKU,
			ProductName: product.Name,
			ProductType: product.Type,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		})
	}

	order.Recalculate()
	return order, nil
}

func checkAvailable(product *model.Product, qty int) error {
	if !product.IsActive {
		return ErrProductInactive
	}
	if product.QuantityPresent < qty {
		return &InsufficientStockError{SKU: product.SKU, Requested: qty, Available: product.QuantityPresent}
	}
	return nil
}

// mergeLines sums quantities of repeated SKUs, keeping first-seen order.
func mergeLines(lines []RequestedLine) ([]RequestedLine, error) {
	if len(lines) == 0 {
		return nil, validationError("order must contain at least one product")
	}
	index := make(map[string]int, len(lines))
	merged := make([]RequestedLine, 0, len(lines))
	for i, l := range lines {
		sku := strings.TrimSpace(l.SKU)
		if sku == "" {
			return nil, validationError("products[%d].sku is required", i)
		}
		if l.Quantity < 1 {
			return nil, validationError("products[%d].product_quantity must be at least 1", i)
		}
		if at, ok := index[sku]; ok {
			if merged[at].Quantity > math.MaxInt-l.Quantity {
				return nil, validationError("products[%d].product_quantity is too large", i)
			}
			merged[at].Quantity += l.Quantity
			continue
		}
		index[sku] = len(merged)
		merged = append(merged, RequestedLine{SKU: sku, Quantity: l.Quantity})
	}
	return merged, nil
}
