package port

import (
	"context"

	"github.com/kmorozova/trading-backend/internal/domain"
)

// PriceSource supplies price snapshots for symbols. The execution path uses
// it for immediate market-order fills, so implementations must be cheap.
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (*domain.Quote, error)
}
