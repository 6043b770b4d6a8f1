package core

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

// MarketService serves quote lookups and the per-user watchlist.
type MarketService struct {
	pricer    port.PriceSource
	watchlist port.WatchlistRepository
	log       *zap.Logger
}

func NewMarketService(pricer port.PriceSource, watchlist port.WatchlistRepository, log *zap.Logger) *MarketService {
	return &MarketService{pricer: pricer, watchlist: watchlist, log: log}
}

func (s *MarketService) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return s.pricer.Quote(ctx, strings.ToUpper(symbol))
}

func (s *MarketService) AddToWatchlist(ctx context.Context, userID, symbol string) (*domain.WatchlistEntry, error) {
	entry, err := s.watchlist.AddToWatchlist(ctx, userID, strings.ToUpper(symbol))
	if err != nil {
		return nil, err
	}
	s.log.Info("watchlist entry added",
		zap.String("user_id", userID),
		zap.String("symbol", entry.Symbol),
	)
	return entry, nil
}

func (s *MarketService) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	return s.watchlist.RemoveFromWatchlist(ctx, userID, strings.ToUpper(symbol))
}

func (s *MarketService) Watchlist(ctx context.Context, userID string) ([]*domain.WatchlistEntry, error) {
	return s.watchlist.ListWatchlist(ctx, userID)
}
