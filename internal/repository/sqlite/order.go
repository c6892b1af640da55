package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

var _ repository.OrderRepository = (*DB)(nil)

// CreateOrder inserts an order. Status defaults to PENDING when unset.
func (db *DB) CreateOrder(ctx context.Context, order *model.Order) error {
	order.ID = xid.New().String()
	if order.Status == "" {
		order.Status = model.OrderPending
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err := db.q(ctx).ExecContext(ctx,
		`INSERT INTO orders (id, user_id, theme_id, price_cents, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.ThemeID,
		toCents(order.Price),
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating order: %w", err)
	}

	return nil
}

// GetOrderByID returns the bare order record.
func (db *DB) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	var (
		o          model.Order
		priceCents int64
	)

	err := db.q(ctx).QueryRowContext(ctx,
		`SELECT id, user_id, theme_id, price_cents, status, created_at, updated_at
		 FROM orders
		 WHERE id = ?`,
		id,
	).Scan(&o.ID, &o.UserID, &o.ThemeID, &priceCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("sqlite: getting order %s: %w", id, err)
	}

	o.Price = fromCents(priceCents)
	return &o, nil
}

// UpdateOrderStatus overwrites an order's status. Transition rules are the
// service's job; this only writes.
func (db *DB) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	result, err := db.q(ctx).ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating order %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("order", id)
	}

	return nil
}

// ListOrdersByUser returns a user's orders, newest first, each joined with the
// summary of the purchased theme.
func (db *DB) ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderWithTheme, error) {
	rows, err := db.q(ctx).QueryContext(ctx,
		`SELECT o.id, o.user_id, o.theme_id, o.price_cents, o.status, o.created_at, o.updated_at,
		        t.id, t.name, t.description, t.price_cents, t.category, t.image, t.rating, t.sales
		 FROM orders o
		 JOIN themes t ON t.id = o.theme_id
		 WHERE o.user_id = ?
		 ORDER BY o.created_at DESC, o.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]model.OrderWithTheme, 0)
	for rows.Next() {
		var (
			o               model.OrderWithTheme
			orderCents      int64
			themePriceCents int64
		)
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.ThemeID, &orderCents, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&o.Theme.ID, &o.Theme.Name, &o.Theme.Description, &themePriceCents,
			&o.Theme.Category, &o.Theme.Image, &o.Theme.Rating, &o.Theme.Sales,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning order row: %w", err)
		}
		o.Price = fromCents(orderCents)
		o.Theme.Price = fromCents(themePriceCents)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating orders: %w", err)
	}

	return orders, nil
}

const adminOrderSelect = `
	SELECT o.id, o.user_id, o.theme_id, o.price_cents, o.status, o.created_at, o.updated_at,
	       u.name, u.email, t.name
	FROM orders o
	JOIN users u ON u.id = o.user_id
	JOIN themes t ON t.id = o.theme_id`

// ListOrders returns one page of orders across all users, newest first, plus
// the number of orders matching the filter on every page.
//
// An offset past the end yields an empty page and the true total.
func (db *DB) ListOrders(ctx context.Context, q repository.OrderQuery) ([]model.AdminOrder, int, error) {
	where := ""
	var args []any
	if q.Status != "" {
		where = " WHERE o.status = ?"
		args = append(args, q.Status)
	}

	var total int
	if err := db.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders o`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting orders: %w", err)
	}

	rows, err := db.q(ctx).QueryContext(ctx,
		adminOrderSelect+where+` ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.AdminOrder, 0, q.Limit)
	for rows.Next() {
		o, err := scanAdminOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating orders: %w", err)
	}

	return orders, total, nil
}

// GetAdminOrder returns one order joined with its purchaser and theme name.
func (db *DB) GetAdminOrder(ctx context.Context, id string) (*model.AdminOrder, error) {
	row := db.q(ctx).QueryRowContext(ctx, adminOrderSelect+` WHERE o.id = ?`, id)

	o, err := scanAdminOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order", id)
		}
		return nil, err
	}
	return o, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAdminOrder(s scanner) (*model.AdminOrder, error) {
	var (
		o          model.AdminOrder
		priceCents int64
	)
	err := s.Scan(
		&o.ID, &o.UserID, &o.ThemeID, &priceCents, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.User.Name, &o.User.Email, &o.Theme.Name,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: scanning order row: %w", err)
	}
	o.Price = fromCents(priceCents)
	return &o, nil
}
