package in_memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

var _ port.OrderRepository = (*MemoryRepo)(nil)
var _ port.UserStore = (*MemoryRepo)(nil)
var _ port.WatchlistRepository = (*MemoryRepo)(nil)

// MemoryRepo keeps everything behind one mutex, so each transition is the
// same atomic check-then-write the Postgres adapter performs with a guarded
// UPDATE.
type MemoryRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	execs     map[string][]*domain.TradeExecution
	users     map[string]*domain.User
	watchlist map[string][]*domain.WatchlistEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:    make(map[string]*domain.Order),
		execs:     make(map[string][]*domain.TradeExecution),
		users:     make(map[string]*domain.User),
		watchlist: make(map[string][]*domain.WatchlistEntry),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	return &c
}

func (r *MemoryRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryRepo) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || !o.IsOwnedBy(userID) {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryRepo) ListOrders(ctx context.Context, userID string, f port.OrderFilter) ([]*domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Order
	for _, o := range r.orders {
		if !o.IsOwnedBy(userID) {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}

	res := make([]*domain.Order, len(matched))
	for i, o := range matched {
		res[i] = cloneOrder(o)
	}
	return res, total, nil
}

func (r *MemoryRepo) ListPendingOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	pending := domain.Pending
	res, _, err := r.ListOrders(ctx, userID, port.OrderFilter{Status: &pending, Limit: -1})
	return res, err
}

func (r *MemoryRepo) CancelOrder(ctx context.Context, orderID, userID string, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || !o.IsOwnedBy(userID) {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != domain.Pending {
		return nil, &domain.StateError{Op: "cancel", Status: o.Status}
	}
	o.Status = domain.Cancelled
	o.CancelledAt = &at
	o.UpdatedAt = at
	return cloneOrder(o), nil
}

func (r *MemoryRepo) ModifyOrder(ctx context.Context, orderID, userID string, patch domain.OrderPatch, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || !o.IsOwnedBy(userID) {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != domain.Pending {
		return nil, &domain.StateError{Op: "modify", Status: o.Status}
	}
	if patch.Quantity != nil {
		o.Quantity = *patch.Quantity
	}
	if patch.LimitPrice != nil {
		p := *patch.LimitPrice
		o.LimitPrice = &p
	}
	if patch.StopPrice != nil {
		p := *patch.StopPrice
		o.StopPrice = &p
	}
	if patch.Notes != nil {
		o.Notes = *patch.Notes
	}
	o.UpdatedAt = at
	return cloneOrder(o), nil
}

func (r *MemoryRepo) RecordFill(ctx context.Context, exec *domain.TradeExecution, status domain.OrderStatus, filledQuantity int64, at time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[exec.OrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != domain.Pending {
		return nil, &domain.StateError{Op: "fill", Status: o.Status}
	}
	o.FilledQuantity = filledQuantity
	o.Status = status
	o.UpdatedAt = at
	if status == domain.Filled {
		o.FilledAt = &at
	}
	e := *exec
	r.execs[o.ID] = append(r.execs[o.ID], &e)
	return cloneOrder(o), nil
}

func (r *MemoryRepo) ListExecutions(ctx context.Context, orderID string) ([]*domain.TradeExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	execs := r.execs[orderID]
	res := make([]*domain.TradeExecution, len(execs))
	for i, e := range execs {
		c := *e
		res[i] = &c
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ExecutedAt.Before(res[j].ExecutedAt)
	})
	return res, nil
}

// AddUser seeds a user, for wiring and tests.
func (r *MemoryRepo) AddUser(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *u
	r.users[u.ID] = &c
}

func (r *MemoryRepo) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryRepo) AddToWatchlist(ctx context.Context, userID, symbol string) (*domain.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.watchlist[userID] {
		if e.Symbol == symbol {
			return nil, domain.ErrAlreadyWatched
		}
	}
	entry := &domain.WatchlistEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
	}
	r.watchlist[userID] = append(r.watchlist[userID], entry)
	c := *entry
	return &c, nil
}

func (r *MemoryRepo) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.watchlist[userID]
	for i, e := range entries {
		if e.Symbol == symbol {
			r.watchlist[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrSymbolNotWatched
}

func (r *MemoryRepo) ListWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.watchlist[userID]
	res := make([]*domain.WatchlistEntry, len(entries))
	for i := range entries {
		c := *entries[len(entries)-1-i] // newest first
		res[i] = &c
	}
	return res, nil
}
