package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-inventory-orders/internal/events"
	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
	"go-inventory-orders/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, caller Identity, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, caller Identity, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	PatchProduct(ctx context.Context, caller Identity, id uuid.UUID, req *ProductPatch) (*ProductPatchResult, error)
	DeleteProduct(ctx context.Context, caller Identity, id uuid.UUID) error
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// ProductRequest is the body of create and full update. IsActive defaults to true.
type ProductRequest struct {
	SKU             string            `json:"sku"`
	Name            string            `json:"product_name"`
	Type            model.ProductType `json:"product_type"`
	Price           decimal.Decimal   `json:"product_price"`
	QuantityPresent int               `json:"quantity_present"`
	IsActive        *bool             `json:"is_active"`
	Description     string            `json:"product_desc"`
}

// ProductPatch changes any subset of price, stock and availability.
type ProductPatch struct {
	Price           *decimal.Decimal `json:"product_price"`
	QuantityPresent *int             `json:"quantity_present"`
	IsActive        *bool            `json:"is_active"`
}

type ProductPatchResult struct {
	ProductID   uuid.UUID        `json:"product_id"`
	OldPrice    *decimal.Decimal `json:"old_product_price,omitempty"`
	NewPrice    *decimal.Decimal `json:"new_product_price,omitempty"`
	OldQuantity *int             `json:"old_quantity_present,omitempty"`
	NewQuantity *int             `json:"new_quantity_present,omitempty"`
	OldIsActive *bool            `json:"old_is_active,omitempty"`
	NewIsActive *bool            `json:"new_is_active,omitempty"`
}

type catalogService struct {
	uow       repository.UnitOfWork
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	events    events.Publisher
	log       *zap.Logger
	clock     func() time.Time
}

func NewCatalogService(uow repository.UnitOfWork, products repository.ProductRepository, movements repository.StockMovementRepository, pub events.Publisher, log *zap.Logger) CatalogService {
	if pub == nil {
		pub = events.Nop
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{
		uow:       uow,
		products:  products,
		movements: movements,
		events:    pub,
		log:       log.Named("catalog"),
		clock:     time.Now,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, caller Identity, req *ProductRequest) (*model.Product, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	product := &model.Product{IsActive: true}
	req.applyTo(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	// The unique index on sku backs this check.
	switch _, err := s.products.FindBySKU(ctx, product.SKU); {
	case err == nil:
		return nil, ErrSKUExists
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeErr(err, nil)
	}

	product.CreatedBy = caller.UserName
	product.UpdatedBy = caller.UserName
	if err := s.products.Create(ctx, product); err != nil {
		return nil, productStoreErr(err)
	}

	s.log.Info("product created", zap.String("sku", product.SKU), zap.String("by", caller.UserName))
	s.publish(ctx, events.Event{
		Type:      events.ProductCreated,
		ProductID: product.ID.String(),
		SKU:       product.SKU,
		Quantity:  product.QuantityPresent,
		Message:   fmt.Sprintf("%s created product '%s'", caller.UserName, product.Name),
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, caller Identity, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}

	var (
		updated  *model.Product
		oldStock int
	)
	// Row is locked until commit so order reservations cannot interleave.
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr(err, ErrProductNotFound)
		}
		oldStock = existing.QuantityPresent

		req.applyTo(existing)
		if err := validateProduct(existing); err != nil {
			return err
		}
		existing.UpdatedBy = caller.UserName

		if err := s.products.Update(ctx, existing); err != nil {
			return productStoreErr(err)
		}
		if err := s.recordAdjustment(ctx, existing, oldStock, caller); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.ProductUpdated,
		ProductID: updated.ID.String(),
		SKU:       updated.SKU,
		Quantity:  updated.QuantityPresent,
		Message:   fmt.Sprintf("%s updated product '%s' (stock %d -> %d)", caller.UserName, updated.Name, oldStock, updated.QuantityPresent),
	})
	return updated, nil
}

func (s *catalogService) PatchProduct(ctx context.Context, caller Identity, id uuid.UUID, req *ProductPatch) (*ProductPatchResult, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	if req.Price == nil && req.QuantityPresent == nil && req.IsActive == nil {
		return nil, validationError("at least one of product_price, quantity_present, is_active is required")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, validationError("product_price must not be negative")
	}
	if req.QuantityPresent != nil && *req.QuantityPresent < 0 {
		return nil, validationError("quantity_present must not be negative")
	}

	result := &ProductPatchResult{ProductID: id}
	var product *model.Product
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := s.products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return storeErr(err, ErrProductNotFound)
		}
		oldStock := existing.QuantityPresent

		if req.Price != nil {
			old := existing.Price
			result.OldPrice, result.NewPrice = &old, req.Price
			existing.Price = *req.Price
		}
		if req.QuantityPresent != nil {
			result.OldQuantity, result.NewQuantity = &oldStock, req.QuantityPresent
			existing.QuantityPresent = *req.QuantityPresent
		}
		if req.IsActive != nil {
			old := existing.IsActive
			result.OldIsActive, result.NewIsActive = &old, req.IsActive
			existing.IsActive = *req.IsActive
		}
		existing.UpdatedBy = caller.UserName

		if err := s.products.Update(ctx, existing); err != nil {
			return productStoreErr(err)
		}
		if err := s.recordAdjustment(ctx, existing, oldStock, caller); err != nil {
			return err
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.ProductUpdated,
		ProductID: product.ID.String(),
		SKU:       product.SKU,
		Quantity:  product.QuantityPresent,
		Message:   fmt.Sprintf("%s patched product '%s'", caller.UserName, product.Name),
	})
	return result, nil
}

// DeleteProduct soft deletes; existing orders keep their snapshot.
func (s *catalogService) DeleteProduct(ctx context.Context, caller Identity, id uuid.UUID) error {
	if err := caller.requireAdmin(); err != nil {
		return err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, ErrProductNotFound)
	}
	if err := s.products.Delete(ctx, id, caller.UserName); err != nil {
		return storeErr(err, ErrProductNotFound)
	}

	s.log.Info("product deleted", zap.String("sku", product.SKU), zap.String("by", caller.UserName))
	s.publish(ctx, events.Event{
		Type:      events.ProductDeleted,
		ProductID: id.String(),
		SKU:       product.SKU,
		Message:   fmt.Sprintf("%s deleted product '%s'", caller.UserName, product.Name),
	})
	return nil
}

func (s *catalogService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrProductNotFound)
	}
	return product, nil
}

// recordAdjustment writes an admin_adjustment movement when stock changed.
func (s *catalogService) recordAdjustment(ctx context.Context, product *model.Product, oldStock int, caller Identity) error {
	diff := product.QuantityPresent - oldStock
	if diff == 0 {
		return nil
	}
	movement := &model.StockMovement{
		ProductID: product.ID,
		SKU:       product.SKU,
		Type:      model.MovementIn,
		Quantity:  diff,
		Reason:    model.ReasonAdminAdjustment,
	}
	if diff < 0 {
		movement.Type = model.MovementOut
		movement.Quantity = -diff
	}
	movement.CreatedBy = caller.UserName
	movement.UpdatedBy = caller.UserName
	return storeErr(s.movements.Create(ctx, movement), nil)
}

func (s *catalogService) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.clock().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("catalog event not delivered", zap.String("type", event.Type), zap.Error(err))
	}
}

func (r *ProductRequest) applyTo(p *model.Product) {
	p.SKU = strings.TrimSpace(r.SKU)
	p.Name = strings.TrimSpace(r.Name)
	p.Type = r.Type
	p.Price = r.Price
	p.QuantityPresent = r.QuantityPresent
	p.Description = r.Description
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

func validateProduct(p *model.Product) error {
	if errs := validator.ValidateStruct(p); len(errs) > 0 {
		return validationError("%s", errs[0])
	}
	if p.Price.IsNegative() {
		return validationError("product_price must not be negative")
	}
	return nil
}

func productStoreErr(err error) error {
	if isDuplicate(err) {
		return ErrSKUExists
	}
	return storeErr(err, ErrProductNotFound)
}
