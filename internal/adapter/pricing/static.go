package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

var _ port.PriceSource = (*Static)(nil)

// Static quotes every symbol at a fixed price. It stands in for a live feed;
// production wiring should replace it behind the same port.
type Static struct {
	price decimal.Decimal
}

func NewStatic(price decimal.Decimal) *Static {
	return &Static{price: price}
}

// DefaultStatic quotes the simulated execution price used for immediate
// market-order fills.
func DefaultStatic() *Static {
	return NewStatic(decimal.NewFromFloat(100.0))
}

func (s *Static) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return &domain.Quote{
		Symbol:    symbol,
		Price:     s.price,
		Change:    decimal.Zero,
		Timestamp: time.Now().UTC(),
	}, nil
}
