package repository

import (
	"context"

	"go-inventory-orders/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows FindAll. System account orders are always excluded.
type OrderFilter struct {
	Status model.OrderStatus
}

type OrderRepository interface {
	Insert(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Order, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order, expectedRevision int64) error
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Insert(ctx context.Context, order *model.Order) error {
	return translate(conn(ctx, r.db).Create(order).Error)
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := conn(ctx, r.db).First(&order, "order_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// FindByIDAndUser hides orders of other users behind ErrNotFound.
func (r *orderRepo) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := conn(ctx, r.db).First(&order, "order_id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, translate(err)
}

func (r *orderRepo) FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	q := conn(ctx, r.db).Model(&model.Order{}).Where("is_system_account = ?", false)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, translate(err)
}

// Update writes order only if its stored revision still equals expectedRevision.
// On success order.Revision is advanced.
func (r *orderRepo) Update(ctx context.Context, order *model.Order, expectedRevision int64) error {
	next := expectedRevision + 1
	res := conn(ctx, r.db).Model(&model.Order{}).
		Where("order_id = ? AND revision = ?", order.OrderID, expectedRevision).
		Select("*").
		Omit("order_id", "user_id", "created_at").
		Updates(&model.Order{
			UserName:           order.UserName,
			IsSystemAccount:    order.IsSystemAccount,
			LineItems:          order.LineItems,
			TotalQuantity:      order.TotalQuantity,
			TotalPrice:         order.TotalPrice,
			Status:             order.Status,
			PaymentStatus:      order.PaymentStatus,
			PaymentMethod:      order.PaymentMethod,
			ShippingAddress:    order.ShippingAddress,
			UpdatedAt:          order.UpdatedAt,
			ConfirmedAt:        order.ConfirmedAt,
			ShippedAt:          order.ShippedAt,
			DeliveredAt:        order.DeliveredAt,
			CancelledAt:        order.CancelledAt,
			CancellationReason: order.CancellationReason,
			CancelledBy:        order.CancelledBy,
			Revision:           next,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleRevision
	}
	order.Revision = next
	return nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Total  int64
	}
	err := conn(ctx, r.db).Model(&model.Order{}).
		Select("status, COUNT(*) AS total").
		Where("is_system_account = ?", false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
