package port

import (
	"context"
	"time"

	"github.com/kmorozova/trading-backend/internal/domain"
)

// OrderFilter narrows and pages order listings.
type OrderFilter struct {
	Status *domain.OrderStatus
	Offset int
	Limit  int
}

// OrderRepository owns order and execution records. State transitions
// (cancel, modify, fill) must be applied as a single guarded write against
// the current status so that concurrent transitions on the same order cannot
// both succeed.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *domain.Order) error

	// GetOrder is scoped to the owner: an order belonging to another user is
	// indistinguishable from a missing one (domain.ErrOrderNotFound).
	GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error)

	// ListOrders returns the user's orders newest-created first along with
	// the total count matching the filter before paging.
	ListOrders(ctx context.Context, userID string, f OrderFilter) ([]*domain.Order, int64, error)

	ListPendingOrders(ctx context.Context, userID string) ([]*domain.Order, error)

	// CancelOrder transitions a pending order to cancelled. Returns
	// domain.ErrOrderNotFound or *domain.StateError on failure.
	CancelOrder(ctx context.Context, orderID, userID string, at time.Time) (*domain.Order, error)

	// ModifyOrder applies the non-nil patch fields to a pending order.
	ModifyOrder(ctx context.Context, orderID, userID string, patch domain.OrderPatch, at time.Time) (*domain.Order, error)

	// RecordFill atomically inserts the execution and advances the order to
	// the given status/filled quantity, guarded on the order still being
	// pending.
	RecordFill(ctx context.Context, exec *domain.TradeExecution, status domain.OrderStatus, filledQuantity int64, at time.Time) (*domain.Order, error)

	// ListExecutions returns an order's fills in executed_at ascending order.
	ListExecutions(ctx context.Context, orderID string) ([]*domain.TradeExecution, error)
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

type WatchlistRepository interface {
	AddToWatchlist(ctx context.Context, userID, symbol string) (*domain.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, userID, symbol string) error
	ListWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistEntry, error)
}
