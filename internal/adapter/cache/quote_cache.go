package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

var _ port.PriceSource = (*QuoteCache)(nil)

// QuoteCache is a read-through Redis cache in front of another price source.
// Cache failures fall back to the origin rather than failing the lookup.
type QuoteCache struct {
	client *redis.Client
	origin port.PriceSource
	ttl    time.Duration
}

func NewQuoteCache(addr, password string, db int, ttl time.Duration, origin port.PriceSource) *QuoteCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &QuoteCache{client: rdb, origin: origin, ttl: ttl}
}

func key(symbol string) string { return "quote:" + symbol }

type cachedQuote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change    decimal.Decimal `json:"change"`
	Timestamp time.Time       `json:"timestamp"`
}

func (c *QuoteCache) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	// a miss and a degraded cache both fall through to the origin
	if b, err := c.client.Get(ctx, key(symbol)).Bytes(); err == nil {
		var q cachedQuote
		if err := json.Unmarshal(b, &q); err == nil {
			return &domain.Quote{Symbol: q.Symbol, Price: q.Price, Change: q.Change, Timestamp: q.Timestamp}, nil
		}
	}

	q, err := c.origin.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(cachedQuote{
		Symbol: q.Symbol, Price: q.Price, Change: q.Change, Timestamp: q.Timestamp,
	}); err == nil {
		_ = c.client.Set(ctx, key(symbol), b, c.ttl).Err()
	}
	return q, nil
}

func (c *QuoteCache) Invalidate(ctx context.Context, symbol string) error {
	return c.client.Del(ctx, key(symbol)).Err()
}
