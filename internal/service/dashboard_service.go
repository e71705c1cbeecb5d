package service

import (
	"context"
	"time"

	"go-inventory-orders/internal/model"
	"go-inventory-orders/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, caller Identity, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context, caller Identity) (*DashboardSummary, error)
}

// DashboardSummary adds order counts to the catalog stats.
type DashboardSummary struct {
	repository.DashboardStats
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
}

type dashboardService struct {
	movements repository.StockMovementRepository
	orders    repository.OrderRepository
	clock     func() time.Time
}

func NewDashboardService(movements repository.StockMovementRepository, orders repository.OrderRepository) DashboardService {
	return &dashboardService{movements: movements, orders: orders, clock: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, caller Identity, days int) ([]repository.StockMovementData, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	if days < 1 || days > 365 {
		return nil, validationError("days must be between 1 and 365")
	}
	endDate := s.clock()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.movements.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	if data == nil {
		data = []repository.StockMovementData{}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, caller Identity) (*DashboardSummary, error) {
	if err := caller.requireAdmin(); err != nil {
		return nil, err
	}
	stats, err := s.movements.GetDashboardStats(ctx)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr(err, nil)
	}
	// Every status is reported, including those with no orders.
	byStatus := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, st := range model.OrderStatuses {
		byStatus[st] = counts[st]
	}
	return &DashboardSummary{DashboardStats: *stats, OrdersByStatus: byStatus}, nil
}
