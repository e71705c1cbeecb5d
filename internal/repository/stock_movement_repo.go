package repository

import (
	"context"
	"time"

	"go-inventory-orders/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	Create(ctx context.Context, movement *model.StockMovement) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StockMovement, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
	Revenue        decimal.Decimal `json:"revenue"`
}

const lowStockThreshold = 10

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return translate(conn(ctx, r.db).Create(movement).Error)
}

func (r *stockMovementRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := conn(ctx, r.db).Where("order_id = ?", orderID).Order("created_at ASC").Find(&movements).Error
	return movements, translate(err)
}

func (r *stockMovementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per day
	rows, err := conn(ctx, r.db).Model(&model.StockMovement{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}

func (r *stockMovementRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := conn(ctx, r.db)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&model.Product{}).Where("quantity_present < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(quantity_present * product_price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, translate(err)
	}
	// Revenue counts delivered orders only.
	if err := db.Model(&model.Order{}).
		Where("status = ? AND is_system_account = ?", model.OrderDelivered, false).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		return nil, translate(err)
	}

	return &stats, nil
}
