package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderType string
type OrderStatus string

const (
	Buy  Side = "buy"
	Sell Side = "sell"

	Market    OrderType = "market"
	Limit     OrderType = "limit"
	Stop      OrderType = "stop"
	StopLimit OrderType = "stop_limit"

	Pending         OrderStatus = "pending"
	Filled          OrderStatus = "filled"
	PartiallyFilled OrderStatus = "partially_filled"
	Cancelled       OrderStatus = "cancelled"
	Rejected        OrderStatus = "rejected"
	Expired         OrderStatus = "expired"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case Pending, Filled, PartiallyFilled, Cancelled, Rejected, Expired:
		return OrderStatus(s), true
	}
	return "", false
}

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case Filled, Cancelled, Rejected, Expired:
		return true
	}
	return false
}

func ValidOrderType(t OrderType) bool {
	switch t {
	case Market, Limit, Stop, StopLimit:
		return true
	}
	return false
}

func ValidSide(s Side) bool {
	return s == Buy || s == Sell
}

// Order is a single trading instruction. Orders are created pending and move
// through the lifecycle only via the repository's guarded transitions; they
// are never deleted.
type Order struct {
	ID              string
	UserID          string
	Symbol          string
	Type            OrderType
	Side            Side
	Quantity        int64
	FilledQuantity  int64
	LimitPrice      *decimal.Decimal
	StopPrice       *decimal.Decimal
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	FilledAt        *time.Time
	CancelledAt     *time.Time
	RejectionReason string
	Notes           string
}

func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// OrderPatch holds the modifiable fields of a pending order. Nil fields are
// left untouched.
type OrderPatch struct {
	Quantity   *int64
	LimitPrice *decimal.Decimal
	StopPrice  *decimal.Decimal
	Notes      *string
}

func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQuantity
}
