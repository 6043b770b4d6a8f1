package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kmorozova/trading-backend/internal/domain"
	"github.com/kmorozova/trading-backend/internal/port"
)

var _ port.OrderRepository = (*Repo)(nil)
var _ port.UserStore = (*Repo)(nil)
var _ port.WatchlistRepository = (*Repo)(nil)

const orderColumns = `id, user_id, symbol, order_type, side, quantity, filled_quantity,
limit_price, stop_price, status, created_at, updated_at, filled_at, cancelled_at,
rejection_reason, notes`

type Repo struct {
	pool *pgxpool.Pool
}

// call Close when finished working with the database.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var orderType, side, status string
	var limitPrice, stopPrice decimal.NullDecimal
	if err := row.Scan(&o.ID, &o.UserID, &o.Symbol, &orderType, &side, &o.Quantity,
		&o.FilledQuantity, &limitPrice, &stopPrice, &status, &o.CreatedAt, &o.UpdatedAt,
		&o.FilledAt, &o.CancelledAt, &o.RejectionReason, &o.Notes); err != nil {
		return nil, err
	}
	o.Type = domain.OrderType(orderType)
	o.Side = domain.Side(side)
	o.Status = domain.OrderStatus(status)
	if limitPrice.Valid {
		o.LimitPrice = &limitPrice.Decimal
	}
	if stopPrice.Valid {
		o.StopPrice = &stopPrice.Decimal
	}
	return &o, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *Repo) CreateOrder(ctx context.Context, o *domain.Order) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO orders(id, user_id, symbol, order_type, side, quantity, filled_quantity,
  limit_price, stop_price, status, created_at, updated_at, rejection_reason, notes)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`, o.ID, o.UserID, o.Symbol, string(o.Type), string(o.Side), o.Quantity, o.FilledQuantity,
		nullDecimal(o.LimitPrice), nullDecimal(o.StopPrice), string(o.Status),
		o.CreatedAt, o.UpdatedAt, o.RejectionReason, o.Notes)
	return err
}

func (r *Repo) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1 AND user_id = $2
`, orderID, userID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (r *Repo) ListOrders(ctx context.Context, userID string, f port.OrderFilter) ([]*domain.Order, int64, error) {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT count(*) FROM orders
WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
`, userID, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)
ORDER BY created_at DESC
OFFSET $3 LIMIT $4
`, userID, status, f.Offset, f.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, o)
	}
	return res, total, rows.Err()
}

func (r *Repo) ListPendingOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1 AND status = 'pending'
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

// CancelOrder is a single conditional write: the status guard in the WHERE
// clause makes a concurrent fill and cancel mutually exclusive.
func (r *Repo) CancelOrder(ctx context.Context, orderID, userID string, at time.Time) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE orders
SET status = 'cancelled', cancelled_at = $3, updated_at = $3
WHERE id = $1 AND user_id = $2 AND status = 'pending'
RETURNING `+orderColumns, orderID, userID, at)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.transitionFailure(ctx, orderID, userID, "cancel")
	}
	return o, err
}

func (r *Repo) ModifyOrder(ctx context.Context, orderID, userID string, patch domain.OrderPatch, at time.Time) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE orders
SET quantity    = COALESCE($3, quantity),
    limit_price = COALESCE($4, limit_price),
    stop_price  = COALESCE($5, stop_price),
    notes       = COALESCE($6, notes),
    updated_at  = $7
WHERE id = $1 AND user_id = $2 AND status = 'pending'
RETURNING `+orderColumns, orderID, userID,
		patch.Quantity, nullDecimal(patch.LimitPrice), nullDecimal(patch.StopPrice),
		patch.Notes, at)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.transitionFailure(ctx, orderID, userID, "modify")
	}
	return o, err
}

// RecordFill advances the order and writes the execution in one transaction,
// guarded on the order still being pending.
func (r *Repo) RecordFill(ctx context.Context, exec *domain.TradeExecution, status domain.OrderStatus, filledQuantity int64, at time.Time) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var filledAt *time.Time
	if status == domain.Filled {
		filledAt = &at
	}

	row := tx.QueryRow(ctx, `
UPDATE orders
SET filled_quantity = $2, status = $3, filled_at = $4, updated_at = $5
WHERE id = $1 AND status = 'pending'
RETURNING `+orderColumns, exec.OrderID, filledQuantity, string(status), filledAt, at)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.fillFailure(ctx, exec.OrderID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO trade_executions(id, order_id, symbol, side, quantity, price, commission, executed_at, execution_id)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, exec.ID, exec.OrderID, exec.Symbol, string(exec.Side), exec.Quantity,
		exec.Price, exec.Commission, exec.ExecutedAt, exec.ExecutionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) ListExecutions(ctx context.Context, orderID string) ([]*domain.TradeExecution, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, symbol, side, quantity, price, commission, executed_at, execution_id
FROM trade_executions
WHERE order_id = $1
ORDER BY executed_at ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.TradeExecution
	for rows.Next() {
		var e domain.TradeExecution
		var side string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Symbol, &side, &e.Quantity,
			&e.Price, &e.Commission, &e.ExecutedAt, &e.ExecutionID); err != nil {
			return nil, err
		}
		e.Side = domain.Side(side)
		res = append(res, &e)
	}
	return res, rows.Err()
}

// transitionFailure distinguishes a missing (or foreign) order from one in a
// non-pending status after a guarded update matched no rows.
func (r *Repo) transitionFailure(ctx context.Context, orderID, userID, op string) error {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return &domain.StateError{Op: op, Status: domain.OrderStatus(status)}
}

func (r *Repo) fillFailure(ctx context.Context, orderID string) error {
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	return &domain.StateError{Op: "fill", Status: domain.OrderStatus(status)}
}

func (r *Repo) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, is_active FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Email, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) AddToWatchlist(ctx context.Context, userID, symbol string) (*domain.WatchlistEntry, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO watchlist_entries(id, user_id, symbol, created_at)
VALUES(gen_random_uuid(), $1, $2, NOW())
ON CONFLICT (user_id, symbol) DO NOTHING
RETURNING id, user_id, symbol, created_at
`, userID, symbol)
	var e domain.WatchlistEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Symbol, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyWatched
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) RemoveFromWatchlist(ctx context.Context, userID, symbol string) error {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM watchlist_entries WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrSymbolNotWatched
	}
	return nil
}

func (r *Repo) ListWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, symbol, created_at
FROM watchlist_entries
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.WatchlistEntry
	for rows.Next() {
		var e domain.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Symbol, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &e)
	}
	return res, rows.Err()
}
