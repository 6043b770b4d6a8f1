package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kmorozova/trading-backend/internal/api/dto"
	"github.com/kmorozova/trading-backend/internal/core"
	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/middleware"
	"github.com/kmorozova/trading-backend/internal/port"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type HTTPServer struct {
	orders  *core.OrderService
	market  *core.MarketService
	users   port.UserStore
	limiter *middleware.RateLimiter
	log     *zap.Logger
}

func NewHTTPServer(orders *core.OrderService, market *core.MarketService, users port.UserStore, limiter *middleware.RateLimiter, log *zap.Logger) *HTTPServer {
	return &HTTPServer{orders: orders, market: market, users: users, limiter: limiter, log: log}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}
	api.Use(middleware.Auth(s.users))

	trading := api.Group("/trading")
	trading.POST("/orders", s.createOrder)
	trading.GET("/orders", s.listOrders)
	trading.GET("/orders/pending", s.pendingOrders)
	trading.POST("/orders/validate", s.validateOrder)
	trading.GET("/orders/:id", s.getOrderDetail)
	trading.PUT("/orders/:id", s.modifyOrder)
	trading.DELETE("/orders/:id", s.cancelOrder)
	trading.GET("/orders/:id/executions", s.getOrderExecutions)

	market := api.Group("/market")
	market.GET("/quote", s.getQuote)
	market.GET("/watchlist", s.getWatchlist)
	market.POST("/watchlist", s.addToWatchlist)
	market.DELETE("/watchlist/:symbol", s.removeFromWatchlist)

	return r
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) createOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orderReq, err := parseOrderRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.UserFromContext(c)
	o, err := s.orders.CreateOrder(c.Request.Context(), user, orderReq)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, convertOrder(o))
}

func (s *HTTPServer) validateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orderReq, err := parseOrderRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := s.orders.Validate(middleware.UserFromContext(c), orderReq)
	c.JSON(http.StatusOK, dto.ValidationResult{
		Valid:    res.Valid,
		Errors:   emptyIfNil(res.Errors),
		Warnings: emptyIfNil(res.Warnings),
	})
}

func (s *HTTPServer) listOrders(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skip parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var status *domain.OrderStatus
	if raw := c.Query("status_filter"); raw != "" {
		st, ok := domain.ParseOrderStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid order status: %s", raw)})
			return
		}
		status = &st
	}

	user := middleware.UserFromContext(c)
	orders, total, err := s.orders.ListOrders(c.Request.Context(), user.ID, skip, limit, status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{
		Orders:   convertOrders(orders),
		Total:    total,
		Page:     skip/limit + 1,
		PageSize: limit,
	})
}

func (s *HTTPServer) pendingOrders(c *gin.Context) {
	user := middleware.UserFromContext(c)
	orders, err := s.orders.PendingOrders(c.Request.Context(), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOrders(orders))
}

func (s *HTTPServer) getOrderDetail(c *gin.Context) {
	user := middleware.UserFromContext(c)
	detail, err := s.orders.GetOrderDetail(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := dto.OrderDetail{
		Order:      convertOrder(detail.Order),
		Executions: convertExecutions(detail.Executions),
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) modifyOrder(c *gin.Context) {
	var req dto.ModifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.UserFromContext(c)
	o, err := s.orders.ModifyOrder(c.Request.Context(), c.Param("id"), user.ID, domain.OrderPatch{
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
		StopPrice:  req.StopPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOrder(o))
}

func (s *HTTPServer) cancelOrder(c *gin.Context) {
	user := middleware.UserFromContext(c)
	o, err := s.orders.CancelOrder(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertOrder(o))
}

func (s *HTTPServer) getOrderExecutions(c *gin.Context) {
	user := middleware.UserFromContext(c)
	execs, err := s.orders.OrderExecutions(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertExecutions(execs))
}

func (s *HTTPServer) getQuote(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol parameter required"})
		return
	}
	q, err := s.market.Quote(c.Request.Context(), symbol)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Quote{
		Symbol:    q.Symbol,
		Price:     q.Price,
		Change:    q.Change,
		Timestamp: q.Timestamp,
	})
}

func (s *HTTPServer) getWatchlist(c *gin.Context) {
	user := middleware.UserFromContext(c)
	entries, err := s.market.Watchlist(c.Request.Context(), user.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	res := make([]dto.WatchlistEntry, len(entries))
	for i, e := range entries {
		res[i] = dto.WatchlistEntry{ID: e.ID, Symbol: e.Symbol, CreatedAt: e.CreatedAt}
	}
	c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) addToWatchlist(c *gin.Context) {
	var req dto.AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := middleware.UserFromContext(c)
	entry, err := s.market.AddToWatchlist(c.Request.Context(), user.ID, req.Symbol)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.WatchlistEntry{ID: entry.ID, Symbol: entry.Symbol, CreatedAt: entry.CreatedAt})
}

func (s *HTTPServer) removeFromWatchlist(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if err := s.market.RemoveFromWatchlist(c.Request.Context(), user.ID, c.Param("symbol")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP statuses. Not-found is returned
// both for missing orders and for orders owned by someone else, so callers
// cannot probe for other users' orders.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	var stErr *domain.StateError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.As(err, &stErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stErr.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, domain.ErrSymbolNotWatched):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyWatched):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseOrderRequest(req dto.CreateOrderRequest) (core.OrderRequest, error) {
	orderType := domain.OrderType(req.OrderType)
	if !domain.ValidOrderType(orderType) {
		return core.OrderRequest{}, fmt.Errorf("invalid order type: %s", req.OrderType)
	}
	side := domain.Side(req.Side)
	if !domain.ValidSide(side) {
		return core.OrderRequest{}, fmt.Errorf("invalid side: %s", req.Side)
	}
	return core.OrderRequest{
		Symbol:     req.Symbol,
		Type:       orderType,
		Side:       side,
		Quantity:   req.Quantity,
		LimitPrice: req.LimitPrice,
		StopPrice:  req.StopPrice,
		Notes:      req.Notes,
	}, nil
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Symbol:          o.Symbol,
		OrderType:       string(o.Type),
		Side:            string(o.Side),
		Quantity:        o.Quantity,
		FilledQuantity:  o.FilledQuantity,
		LimitPrice:      o.LimitPrice,
		StopPrice:       o.StopPrice,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		FilledAt:        o.FilledAt,
		CancelledAt:     o.CancelledAt,
		RejectionReason: o.RejectionReason,
		Notes:           o.Notes,
	}
}

func convertOrders(orders []*domain.Order) []dto.Order {
	res := make([]dto.Order, len(orders))
	for i, o := range orders {
		res[i] = convertOrder(o)
	}
	return res
}

func convertExecutions(execs []*domain.TradeExecution) []dto.TradeExecution {
	res := make([]dto.TradeExecution, len(execs))
	for i, e := range execs {
		res[i] = dto.TradeExecution{
			ID:          e.ID,
			OrderID:     e.OrderID,
			Symbol:      e.Symbol,
			Side:        string(e.Side),
			Quantity:    e.Quantity,
			Price:       e.Price,
			Commission:  e.Commission,
			ExecutedAt:  e.ExecutedAt,
			ExecutionID: e.ExecutionID,
		}
	}
	return res
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
