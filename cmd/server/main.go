package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/adapter/cache"
	"github.com/kmorozova/trading-backend/internal/adapter/pg"
	"github.com/kmorozova/trading-backend/internal/adapter/pricing"
	httpapi "github.com/kmorozova/trading-backend/internal/api/http"
	"github.com/kmorozova/trading-backend/internal/config"
	"github.com/kmorozova/trading-backend/internal/core"
	"github.com/kmorozova/trading-backend/internal/middleware"
	"github.com/kmorozova/trading-backend/internal/port"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger, err := newLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := pg.NewRepo(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer repo.Close()

	var pricer port.PriceSource = pricing.DefaultStatic()
	if cfg.Redis.Enabled {
		pricer = cache.NewQuoteCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.QuoteTTL, pricer)
		logger.Info("quote cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	orders := core.NewOrderService(repo, pricer, logger)
	market := core.NewMarketService(pricer, repo, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		logger.Info("rate limiting enabled",
			zap.Float64("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
	}

	server := httpapi.NewHTTPServer(orders, market, repo, limiter, logger)
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.Router(),
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
