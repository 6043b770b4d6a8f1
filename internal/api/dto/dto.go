package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest is also used by the pre-trade validate endpoint, so
// business-rule fields (symbol, quantity, prices) are left to the validator
// instead of binding tags; only the closed enums are checked at the edge.
type CreateOrderRequest struct {
	Symbol     string           `json:"symbol"`
	OrderType  string           `json:"order_type" binding:"required"`
	Side       string           `json:"side" binding:"required"`
	Quantity   int64            `json:"quantity"`
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice  *decimal.Decimal `json:"stop_price,omitempty"`
	Notes      string           `json:"notes,omitempty"`
}

type ModifyOrderRequest struct {
	Quantity   *int64           `json:"quantity,omitempty"`
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice  *decimal.Decimal `json:"stop_price,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

type Order struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Symbol          string           `json:"symbol"`
	OrderType       string           `json:"order_type"`
	Side            string           `json:"side"`
	Quantity        int64            `json:"quantity"`
	FilledQuantity  int64            `json:"filled_quantity"`
	LimitPrice      *decimal.Decimal `json:"limit_price"`
	StopPrice       *decimal.Decimal `json:"stop_price"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	FilledAt        *time.Time       `json:"filled_at"`
	CancelledAt     *time.Time       `json:"cancelled_at"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

type TradeExecution struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Commission  decimal.Decimal `json:"commission"`
	ExecutedAt  time.Time       `json:"executed_at"`
	ExecutionID string          `json:"execution_id,omitempty"`
}

type OrderDetail struct {
	Order
	Executions []TradeExecution `json:"executions"`
}

type OrderListResponse struct {
	Orders   []Order `json:"orders"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change    decimal.Decimal `json:"change"`
	Timestamp time.Time       `json:"timestamp"`
}

type WatchlistEntry struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}

type AddWatchlistRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}
