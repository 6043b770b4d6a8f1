package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSymbolNotWatched = errors.New("symbol not in watchlist")
	ErrAlreadyWatched   = errors.New("symbol already in watchlist")
)

// ValidationError carries the ordered rule failures from order validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "Order validation failed: " + strings.Join(e.Errors, ", ")
}

// StateError is returned when a transition is attempted on an order whose
// current status does not permit it.
type StateError struct {
	Op     string
	Status OrderStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("Cannot %s order with status %s", e.Op, e.Status)
}
