package core

import (
	"github.com/shopspring/decimal"

	"github.com/kmorozova/trading-backend/internal/domain"
)

// OrderRequest is what a caller submits to create (or pre-validate) an order.
type OrderRequest struct {
	Symbol     string
	Type       domain.OrderType
	Side       domain.Side
	Quantity   int64
	LimitPrice *decimal.Decimal
	StopPrice  *decimal.Decimal
	Notes      string
}

type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateOrder checks a request against the acceptance rules. Every rule is
// evaluated so that all failures surface together; warnings never block.
// The function is pure: no state is read or written beyond its arguments.
func ValidateOrder(user *domain.User, req OrderRequest) ValidationResult {
	var errs, warnings []string

	if !user.IsActive {
		errs = append(errs, "User account is not active")
	}

	if len(req.Symbol) < 1 || len(req.Symbol) > 20 {
		errs = append(errs, "Invalid stock symbol")
	}

	if req.Quantity <= 0 {
		errs = append(errs, "Quantity must be greater than 0")
	}

	if req.Type == domain.Limit && req.LimitPrice == nil {
		errs = append(errs, "Limit price is required for limit orders")
	}

	if (req.Type == domain.Stop || req.Type == domain.StopLimit) && req.StopPrice == nil {
		errs = append(errs, "Stop price is required for stop orders")
	}

	if req.Type == domain.StopLimit {
		if req.LimitPrice == nil {
			errs = append(errs, "Limit price is required for stop-limit orders")
		} else if req.StopPrice != nil {
			if req.Side == domain.Buy && req.StopPrice.GreaterThan(*req.LimitPrice) {
				warnings = append(warnings, "Stop price is above limit price for buy stop-limit order")
			} else if req.Side == domain.Sell && req.StopPrice.LessThan(*req.LimitPrice) {
				warnings = append(warnings, "Stop price is below limit price for sell stop-limit order")
			}
		}
	}

	return ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}
