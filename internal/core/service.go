package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

// OrderService implements the order lifecycle: validation, creation,
// simulated execution of market orders, guarded cancel/modify and the read
// paths. Collaborators are injected so tests can substitute the repository
// and the price source.
type OrderService struct {
	repo   port.OrderRepository
	pricer port.PriceSource
	exec   *ExecutionEngine
	log    *zap.Logger
}

func NewOrderService(repo port.OrderRepository, pricer port.PriceSource, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		pricer: pricer,
		exec:   NewExecutionEngine(repo, log),
		log:    log,
	}
}

// Validate runs the acceptance rules without touching state. It never fails.
func (s *OrderService) Validate(user *domain.User, req OrderRequest) ValidationResult {
	return ValidateOrder(user, req)
}

// CreateOrder validates the request and persists a new pending order. Market
// orders are filled immediately at the quoted price; limit and stop orders
// stay pending until cancelled.
func (s *OrderService) CreateOrder(ctx context.Context, user *domain.User, req OrderRequest) (*domain.Order, error) {
	if res := ValidateOrder(user, req); !res.Valid {
		return nil, &domain.ValidationError{Errors: res.Errors}
	}

	now := time.Now().UTC()
	o := &domain.Order{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Symbol:     strings.ToUpper(req.Symbol),
		Type:       req.Type,
		Side:       req.Side,
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
		StopPrice:  req.StopPrice,
		Status:     domain.Pending,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("symbol", o.Symbol),
		zap.String("type", string(o.Type)),
		zap.String("side", string(o.Side)),
		zap.Int64("quantity", o.Quantity),
	)

	if o.Type == domain.Market {
		quote, err := s.pricer.Quote(ctx, o.Symbol)
		if err != nil {
			return nil, err
		}
		return s.exec.Fill(ctx, o, o.Quantity, quote.Price, decimal.Zero)
	}

	return o, nil
}

// CancelOrder cancels a pending order. The transition is one conditional
// write in the repository, so a concurrent fill and cancel cannot both win.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	o, err := s.repo.CancelOrder(ctx, orderID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info("order cancelled",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
	)
	return o, nil
}

// ModifyOrder applies the present patch fields to a pending order. Patch
// values are structurally re-checked before any write; the source system let
// them through unvalidated.
func (s *OrderService) ModifyOrder(ctx context.Context, orderID, userID string, patch domain.OrderPatch) (*domain.Order, error) {
	var errs []string
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		errs = append(errs, "Quantity must be greater than 0")
	}
	if patch.LimitPrice != nil && !patch.LimitPrice.IsPositive() {
		errs = append(errs, "Limit price must be greater than 0")
	}
	if patch.StopPrice != nil && !patch.StopPrice.IsPositive() {
		errs = append(errs, "Stop price must be greater than 0")
	}
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Errors: errs}
	}

	o, err := s.repo.ModifyOrder(ctx, orderID, userID, patch, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info("order modified",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
	)
	return o, nil
}

// ListOrders returns a page of the user's orders newest-first, optionally
// narrowed to one status, plus the total matching count.
func (s *OrderService) ListOrders(ctx context.Context, userID string, offset, limit int, status *domain.OrderStatus) ([]*domain.Order, int64, error) {
	return s.repo.ListOrders(ctx, userID, port.OrderFilter{
		Status: status,
		Offset: offset,
		Limit:  limit,
	})
}

func (s *OrderService) PendingOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListPendingOrders(ctx, userID)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID, userID)
}

// OrderExecutions returns an order's fills, executed_at ascending. Ownership
// is checked first so foreign orders read as not found.
func (s *OrderService) OrderExecutions(ctx context.Context, orderID, userID string) ([]*domain.TradeExecution, error) {
	if _, err := s.repo.GetOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListExecutions(ctx, orderID)
}

// OrderDetail is the order together with its executions.
type OrderDetail struct {
	Order      *domain.Order
	Executions []*domain.TradeExecution
}

func (s *OrderService) GetOrderDetail(ctx context.Context, orderID, userID string) (*OrderDetail, error) {
	o, err := s.repo.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	execs, err := s.repo.ListExecutions(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Executions: execs}, nil
}
