package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/metrics"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

const (
	DefaultOrderPageLimit = 10
	MaxOrderPageLimit     = 100
)

// AdminOrderQuery is the admin order listing request. Status may be empty
// (every status); Page and Limit fall back to 1 and DefaultOrderPageLimit.
type AdminOrderQuery struct {
	Status string
	Page   int
	Limit  int
}

// AdminService backs the admin panel. Access control is done once by the
// route group; nothing here re-checks the role.
type AdminService struct {
	tx     repository.Transactor
	orders repository.OrderRepository
	stats  repository.StatsRepository
	logger *slog.Logger
}

func NewAdminService(
	tx repository.Transactor,
	orders repository.OrderRepository,
	stats repository.StatsRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{tx: tx, orders: orders, stats: stats, logger: logger}
}

// Stats returns the dashboard aggregates, computed fresh on every call.
func (s *AdminService) Stats(ctx context.Context) (*model.Stats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/admin: computing stats: %w", err)
	}
	return stats, nil
}

// ListOrders returns one page of all orders, newest first.
//
// pages is ceil(total/limit); a page past the end is an empty list with the
// real total and pages.
func (s *AdminService) ListOrders(ctx context.Context, q AdminOrderQuery) (*model.OrderPage, error) {
	status, err := parseStatusFilter(q.Status)
	if err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultOrderPageLimit
	}
	if limit > MaxOrderPageLimit {
		limit = MaxOrderPageLimit
	}

	oq := repository.OrderQuery{Status: status, Limit: limit}
	if page-1 > math.MaxInt/limit {
		// The offset would overflow, and no table is that large. Ask for
		// zero rows so only the total comes back.
		oq.Limit = 0
	} else {
		oq.Offset = (page - 1) * limit
	}

	orders, total, err := s.orders.ListOrders(ctx, oq)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing orders: %w", err)
	}

	return &model.OrderPage{
		Orders: orders,
		Total:  total,
		Pages:  (total + limit - 1) / limit,
	}, nil
}

// UpdateOrderStatus moves an order to a new status and returns it joined with
// its buyer and theme.
//
// Re-applying the current status is a no-op. Returning to PENDING is rejected
// with a validation error.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, id, status string) (*model.AdminOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "order ID is required")
	}
	next := model.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be one of PENDING, COMPLETED, CANCELLED, FAILED (got %q)", status))
	}

	var (
		result  *model.AdminOrder
		changed bool
		prev    model.OrderStatus
	)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := s.orders.GetOrderByID(ctx, id)
		if err != nil {
			return err
		}
		prev = current.Status

		if !current.Status.CanTransitionTo(next) {
			return apperror.ValidationFailed("status",
				fmt.Sprintf("order cannot move from %s to %s", current.Status, next))
		}

		if current.Status != next {
			if err := s.orders.UpdateOrderStatus(ctx, id, next); err != nil {
				return fmt.Errorf("service/admin: updating order %s: %w", id, err)
			}
			changed = true
		}

		result, err = s.orders.GetAdminOrder(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.OrderStatusChangesTotal.WithLabelValues(string(next)).Inc()
		s.logger.Info("order status changed",
			slog.String("orderID", id),
			slog.String("from", string(prev)),
			slog.String("to", string(next)),
		)
	}

	return result, nil
}

func parseStatusFilter(raw string) (model.OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	status := model.OrderStatus(strings.ToUpper(raw))
	if !status.Valid() {
		return "", apperror.ValidationFailed("status", fmt.Sprintf("unknown order status %q", raw))
	}
	return status, nil
}
