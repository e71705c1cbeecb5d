package service

import (
	"context"
	"testing"

	"go-inventory-orders/internal/model"

	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.addProduct(t, "A", "10", 20, true)
	f.addProduct(t, "B", "5", 3, true)
	first := f.place(t, alice, RequestedLine{SKU: "A", Quantity: 2})
	f.place(t, bob, RequestedLine{SKU: "A", Quantity: 1})
	f.place(t, root, RequestedLine{SKU: "B", Quantity: 1})
	_, err := f.svc.CancelOrder(ctx, alice, first.OrderID, "duplicate")
	require.NoError(t, err)

	dash := NewDashboardService(memMovementRepo{store: f.store}, f.orders)

	_, err = dash.GetDashboardStats(ctx, alice)
	require.ErrorIs(t, err, ErrForbidden)

	summary, err := dash.GetDashboardStats(ctx, root)
	require.NoError(t, err)
	require.Equal(t, int64(2), summary.TotalProducts)
	require.Equal(t, int64(1), summary.OrdersByStatus[model.OrderPending])
	require.Equal(t, int64(1), summary.OrdersByStatus[model.OrderCancelled])
	require.Contains(t, summary.OrdersByStatus, model.OrderDelivered)
	require.Equal(t, int64(0), summary.OrdersByStatus[model.OrderDelivered])

	moves, err := dash.GetStockMovement(ctx, root, 7)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.Equal(t, 2, moves[0].Inbound)
	require.Equal(t, 4, moves[0].Outbound)

	_, err = dash.GetStockMovement(ctx, root, 0)
	require.ErrorIs(t, err, ErrValidation)
}
