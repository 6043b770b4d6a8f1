package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

// ExecutionEngine records simulated fills. Only the order service calls it
// today (full fill of market orders at the quoted price), but Fill accepts a
// quantity below the remaining amount so a partial-fill path can be added
// without touching the persistence contract.
type ExecutionEngine struct {
	repo port.OrderRepository
	log  *zap.Logger
}

func NewExecutionEngine(repo port.OrderRepository, log *zap.Logger) *ExecutionEngine {
	return &ExecutionEngine{repo: repo, log: log}
}

// Fill records one execution of qty shares at the given price and advances
// the order. A fill that completes the order moves it to filled, anything
// less to partially_filled. The write is guarded on the order still being
// pending.
func (e *ExecutionEngine) Fill(ctx context.Context, o *domain.Order, qty int64, price, commission decimal.Decimal) (*domain.Order, error) {
	if o.Status.Terminal() {
		return nil, &domain.StateError{Op: "fill", Status: o.Status}
	}
	if qty <= 0 || qty > o.Remaining() {
		return nil, fmt.Errorf("fill quantity %d out of range for order %s (remaining %d)", qty, o.ID, o.Remaining())
	}

	now := time.Now().UTC()
	exec := &domain.TradeExecution{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   qty,
		Price:      price,
		Commission: commission,
		ExecutedAt: now,
	}

	filled := o.FilledQuantity + qty
	status := domain.PartiallyFilled
	if filled == o.Quantity {
		status = domain.Filled
	}

	updated, err := e.repo.RecordFill(ctx, exec, status, filled, now)
	if err != nil {
		return nil, err
	}

	e.log.Info("order filled",
		zap.String("order_id", updated.ID),
		zap.String("symbol", updated.Symbol),
		zap.Int64("quantity", qty),
		zap.String("price", price.String()),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}
