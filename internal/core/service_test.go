package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/adapter/in_memory"
	"github.com/kmorozova/trading-backend/internal/adapter/pricing"
	"github.com/kmorozova/trading-backend/internal/core"
	"github.com/kmorozova/trading-backend/internal/domain"
)

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func newTestService() (*core.OrderService, *in_memory.MemoryRepo, *domain.User) {
	repo := in_memory.NewMemoryRepo()
	user := &domain.User{ID: "user-1", Email: "trader@example.com", IsActive: true}
	repo.AddUser(user)
	svc := core.NewOrderService(repo, pricing.DefaultStatic(), zap.NewNop())
	return svc, repo, user
}

func TestCreateOrder_MarketOrderFillsImmediately(t *testing.T) {
	svc, repo, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "aapl", Type: domain.Market, Side: domain.Buy, Quantity: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", o.Symbol)
	assert.Equal(t, domain.Filled, o.Status)
	assert.Equal(t, int64(100), o.FilledQuantity)
	require.NotNil(t, o.FilledAt)

	execs, err := repo.ListExecutions(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, int64(100), execs[0].Quantity)
	assert.True(t, execs[0].Price.Equal(decimal.NewFromFloat(100.0)))
	assert.True(t, execs[0].Commission.IsZero())
}

func TestCreateOrder_LimitOrderStaysPending(t *testing.T) {
	svc, repo, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 50, LimitPrice: dec(150),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Pending, o.Status)
	assert.Equal(t, int64(0), o.FilledQuantity)
	assert.Nil(t, o.FilledAt)

	execs, err := repo.ListExecutions(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, execs)
}

func TestCreateOrder_InvalidPersistsNothing(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 50,
	})
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "Limit price is required for limit orders")

	orders, total, err := svc.ListOrders(ctx, user.ID, 0, 100, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int64(0), total)
}

func TestCancelOrder_Lifecycle(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "MSFT", Type: domain.Limit, Side: domain.Sell, Quantity: 10, LimitPrice: dec(400),
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, o.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// second cancel must fail, naming the current status
	_, err = svc.CancelOrder(ctx, o.ID, user.ID)
	var stErr *domain.StateError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, domain.Cancelled, stErr.Status)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestCancelOrder_FilledOrderRejected(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 5,
	})
	require.NoError(t, err)
	require.Equal(t, domain.Filled, o.Status)

	_, err = svc.CancelOrder(ctx, o.ID, user.ID)
	var stErr *domain.StateError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, domain.Filled, stErr.Status)
	assert.Contains(t, err.Error(), "filled")
}

func TestCancelOrder_NotFoundForForeignOrder(t *testing.T) {
	svc, repo, user := newTestService()
	ctx := context.Background()

	other := &domain.User{ID: "user-2", IsActive: true}
	repo.AddUser(other)

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 10, LimitPrice: dec(150),
	})
	require.NoError(t, err)

	_, err = svc.CancelOrder(ctx, o.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestModifyOrder_AppliesOnlyPatchedFields(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 100, LimitPrice: dec(150),
	})
	require.NoError(t, err)
	createdUpdatedAt := o.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	qty := int64(150)
	modified, err := svc.ModifyOrder(ctx, o.ID, user.ID, domain.OrderPatch{
		Quantity:   &qty,
		LimitPrice: dec(155),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(150), modified.Quantity)
	assert.True(t, modified.LimitPrice.Equal(decimal.NewFromFloat(155)))
	assert.Equal(t, "AAPL", modified.Symbol)
	assert.Equal(t, domain.Buy, modified.Side)
	assert.True(t, modified.UpdatedAt.After(createdUpdatedAt))
}

func TestModifyOrder_RejectsNonPositivePatchValues(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 100, LimitPrice: dec(150),
	})
	require.NoError(t, err)

	qty := int64(-10)
	_, err = svc.ModifyOrder(ctx, o.ID, user.ID, domain.OrderPatch{Quantity: &qty})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "Quantity must be greater than 0")

	// order untouched
	got, err := svc.GetOrder(ctx, o.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Quantity)
}

func TestModifyOrder_NonPendingRejected(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 10,
	})
	require.NoError(t, err)

	qty := int64(20)
	_, err = svc.ModifyOrder(ctx, o.ID, user.ID, domain.OrderPatch{Quantity: &qty})

	var stErr *domain.StateError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, domain.Filled, stErr.Status)
}

func TestListOrders_StatusFilterAndPaging(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, user, core.OrderRequest{
			Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 10, LimitPrice: dec(150),
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 10,
	})
	require.NoError(t, err)

	pending := domain.Pending
	orders, total, err := svc.ListOrders(ctx, user.ID, 0, 100, &pending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, o := range orders {
		assert.Equal(t, domain.Pending, o.Status)
	}

	page, total, err := svc.ListOrders(ctx, user.ID, 1, 2, &pending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	all, total, err := svc.ListOrders(ctx, user.ID, 0, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestPendingOrders(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 10,
	})
	require.NoError(t, err)
	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "MSFT", Type: domain.Limit, Side: domain.Buy, Quantity: 10, LimitPrice: dec(400),
	})
	require.NoError(t, err)

	pending, err := svc.PendingOrders(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, o.ID, pending[0].ID)
}

func TestOrderExecutions_OwnershipEnforced(t *testing.T) {
	svc, repo, user := newTestService()
	ctx := context.Background()

	other := &domain.User{ID: "user-2", IsActive: true}
	repo.AddUser(other)

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 10,
	})
	require.NoError(t, err)

	execs, err := svc.OrderExecutions(ctx, o.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, execs, 1)

	_, err = svc.OrderExecutions(ctx, o.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGetOrderDetail(t *testing.T) {
	svc, _, user := newTestService()
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, user, core.OrderRequest{
		Symbol: "AAPL", Type: domain.Market, Side: domain.Sell, Quantity: 25,
	})
	require.NoError(t, err)

	detail, err := svc.GetOrderDetail(ctx, o.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, detail.Order.ID)
	require.Len(t, detail.Executions, 1)
	assert.Equal(t, domain.Sell, detail.Executions[0].Side)
}
