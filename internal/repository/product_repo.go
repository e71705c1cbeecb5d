package repository

import (
	"context"

	"go-inventory-orders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	DecrementIfAvailable(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(conn(ctx, r.db).Create(product).Error)
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := conn(ctx, r.db).Order("created_at DESC").Find(&products).Error
	return products, translate(err)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "product_id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := conn(ctx, r.db).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return translate(conn(ctx, r.db).Save(product).Error)
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	db := conn(ctx, r.db)
	res := db.Model(&model.Product{}).Where("product_id = ?", id).Update("updated_by", deletedBy)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return translate(db.Delete(&model.Product{}, "product_id = ?", id).Error)
}

// DecrementIfAvailable reserves qty units in a single conditional write.
// It reports false when the product is inactive, missing or short on stock.
func (r *productRepo) DecrementIfAvailable(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty < 1 {
		return false, ErrBadQuantity
	}
	res := conn(ctx, r.db).Model(&model.Product{}).
		Where("product_id = ? AND is_active = ? AND quantity_present >= ?", id, true, qty).
		UpdateColumn("quantity_present", gorm.Expr("quantity_present - ?", qty))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 1 {
		return ErrBadQuantity
	}
	res := conn(ctx, r.db).Unscoped().Model(&model.Product{}).
		Where("product_id = ?", id).
		UpdateColumn("quantity_present", gorm.Expr("quantity_present + ?", qty))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
