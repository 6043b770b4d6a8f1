package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kmorozova/trading-backend/internal/domain"
)

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func activeUser() *domain.User {
	return &domain.User{ID: "user-1", Email: "trader@example.com", IsActive: true}
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name         string
		user         *domain.User
		req          OrderRequest
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:      "valid market order",
			user:      activeUser(),
			req:       OrderRequest{Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 100},
			wantValid: true,
		},
		{
			name:       "inactive user",
			user:       &domain.User{ID: "user-2", IsActive: false},
			req:        OrderRequest{Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 100},
			wantErrors: []string{"User account is not active"},
		},
		{
			name:       "empty symbol",
			user:       activeUser(),
			req:        OrderRequest{Symbol: "", Type: domain.Market, Side: domain.Buy, Quantity: 100},
			wantErrors: []string{"Invalid stock symbol"},
		},
		{
			name:       "symbol too long",
			user:       activeUser(),
			req:        OrderRequest{Symbol: "ABCDEFGHIJKLMNOPQRSTU", Type: domain.Market, Side: domain.Buy, Quantity: 100},
			wantErrors: []string{"Invalid stock symbol"},
		},
		{
			name:       "zero quantity",
			user:       activeUser(),
			req:        OrderRequest{Symbol: "AAPL", Type: domain.Market, Side: domain.Buy, Quantity: 0},
			wantErrors: []string{"Quantity must be greater than 0"},
		},
		{
			name:       "limit order without limit price",
			user:       activeUser(),
			req:        OrderRequest{Symbol: "AAPL", Type: domain.Limit, Side: domain.Buy, Quantity: 100},
			wantErrors: []string{"Limit price is required for limit orders"},
		},
		{
			name:       "stop order without stop price",
			user:       activeUser(),
			req:        OrderRequest{Symbol: "AAPL", Type: domain.Stop, Side: domain.Sell, Quantity: 100},
			wantErrors: []string{"Stop price is required for stop orders"},
		},
		{
			name: "stop-limit without limit price",
			user: activeUser(),
			req:  OrderRequest{Symbol: "AAPL", Type: domain.StopLimit, Side: domain.Buy, Quantity: 100, StopPrice: dec(110)},
			wantErrors: []string{
				"Limit price is required for stop-limit orders",
			},
		},
		{
			name:         "buy stop-limit with stop above limit",
			user:         activeUser(),
			req:          OrderRequest{Symbol: "AAPL", Type: domain.StopLimit, Side: domain.Buy, Quantity: 100, StopPrice: dec(110), LimitPrice: dec(100)},
			wantValid:    true,
			wantWarnings: []string{"Stop price is above limit price for buy stop-limit order"},
		},
		{
			name:         "sell stop-limit with stop below limit",
			user:         activeUser(),
			req:          OrderRequest{Symbol: "AAPL", Type: domain.StopLimit, Side: domain.Sell, Quantity: 100, StopPrice: dec(90), LimitPrice: dec(100)},
			wantValid:    true,
			wantWarnings: []string{"Stop price is below limit price for sell stop-limit order"},
		},
		{
			name: "multiple failures surface together",
			user: &domain.User{ID: "user-3", IsActive: false},
			req:  OrderRequest{Symbol: "", Type: domain.Limit, Side: domain.Buy, Quantity: -5},
			wantErrors: []string{
				"User account is not active",
				"Invalid stock symbol",
				"Quantity must be greater than 0",
				"Limit price is required for limit orders",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateOrder(tt.user, tt.req)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantErrors, res.Errors)
			assert.Equal(t, tt.wantWarnings, res.Warnings)
		})
	}
}

func TestValidateOrder_Idempotent(t *testing.T) {
	user := activeUser()
	req := OrderRequest{Symbol: "AAPL", Type: domain.StopLimit, Side: domain.Buy, Quantity: 100, StopPrice: dec(110), LimitPrice: dec(100)}

	first := ValidateOrder(user, req)
	second := ValidateOrder(user, req)
	assert.Equal(t, first, second)
}
