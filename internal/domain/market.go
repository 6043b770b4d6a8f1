package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Symbol    string
	Price     decimal.Decimal
	Change    decimal.Decimal
	Timestamp time.Time
}

type WatchlistEntry struct {
	ID        string
	UserID    string
	Symbol    string
	CreatedAt time.Time
}
