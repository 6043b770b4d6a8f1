package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeExecution is one fill event against an order. Executions are written
// once by the execution engine and never mutated.
type TradeExecution struct {
	ID         string
	OrderID    string
	Symbol     string
	Side       Side
	Quantity   int64
	Price      decimal.Decimal
	Commission decimal.Decimal
	ExecutedAt time.Time
	// ExecutionID is the identifier assigned by an external venue, when any.
	ExecutionID string
}
