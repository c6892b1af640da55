package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/metrics"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

// CheckoutInput is a purchase request. Price is what the client saw; it is
// advisory and never stored.
type CheckoutInput struct {
	ThemeID string
	Price   *decimal.Decimal
}

// OrderService runs the buyer side of the order lifecycle.
type OrderService struct {
	tx             repository.Transactor
	orders         repository.OrderRepository
	themes         repository.ThemeRepository
	users          repository.UserRepository
	incrementSales bool
	logger         *slog.Logger
}

// NewOrderService creates an OrderService. When incrementSales is set, every
// completed checkout also bumps the theme's sales counter in the same
// transaction.
func NewOrderService(
	tx repository.Transactor,
	orders repository.OrderRepository,
	themes repository.ThemeRepository,
	users repository.UserRepository,
	incrementSales bool,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		tx:             tx,
		orders:         orders,
		themes:         themes,
		users:          users,
		incrementSales: incrementSales,
		logger:         logger,
	}
}

// Checkout purchases a theme for the principal.
//
// The order is inserted as PENDING and moved to COMPLETED inside one
// transaction, so a failure at any step leaves no order behind. The stored
// price is the theme's current price; a different client price is logged and
// ignored.
func (s *OrderService) Checkout(ctx context.Context, p *auth.Principal, in CheckoutInput) (*model.Order, error) {
	if p == nil || p.ID == "" {
		metrics.CheckoutsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.Unauthenticated("Authentication required")
	}

	themeID := strings.TrimSpace(in.ThemeID)
	if themeID == "" {
		metrics.CheckoutsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.ValidationFailed("themeId", "themeId is required")
	}
	if in.Price != nil && in.Price.IsNegative() {
		metrics.CheckoutsTotal.WithLabelValues("rejected").Inc()
		return nil, apperror.ValidationFailed("price", "price must not be negative")
	}

	var order *model.Order
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, p.ID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				// A valid token for a user that no longer exists.
				s.logger.Warn("checkout by principal with no user record",
					slog.String("userID", p.ID),
					slog.String("email", p.Email),
				)
				return &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
			}
			return err
		}

		theme, err := s.themes.GetThemeByID(ctx, themeID)
		if err != nil {
			return err
		}

		if in.Price != nil && !in.Price.Equal(theme.Price) {
			s.logger.Info("checkout price differs from catalog price, using catalog price",
				slog.String("themeID", theme.ID),
				slog.String("clientPrice", in.Price.String()),
				slog.String("catalogPrice", theme.Price.String()),
			)
		}

		o := &model.Order{
			UserID:  p.ID,
			ThemeID: theme.ID,
			Price:   theme.Price,
			Status:  model.OrderPending,
		}
		if err := s.orders.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("service/order: creating order: %w", err)
		}

		// No payment step: the order completes immediately.
		if err := s.orders.UpdateOrderStatus(ctx, o.ID, model.OrderCompleted); err != nil {
			return fmt.Errorf("service/order: completing order %s: %w", o.ID, err)
		}
		o.Status = model.OrderCompleted

		if s.incrementSales {
			if err := s.themes.IncrementSales(ctx, theme.ID); err != nil {
				return fmt.Errorf("service/order: incrementing sales: %w", err)
			}
		}

		order = o
		return nil
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			metrics.CheckoutsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.CheckoutsTotal.WithLabelValues("error").Inc()
			s.logger.Error("checkout failed",
				slog.String("userID", p.ID),
				slog.String("themeID", themeID),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues("completed").Inc()
	s.logger.Info("order completed",
		slog.String("orderID", order.ID),
		slog.String("userID", order.UserID),
		slog.String("themeID", order.ThemeID),
		slog.String("price", order.Price.String()),
	)

	return order, nil
}

// ListMine returns the principal's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, p *auth.Principal) ([]model.OrderWithTheme, error) {
	if p == nil || p.ID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	orders, err := s.orders.ListOrdersByUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("service/order: listing orders for user %s: %w", p.ID, err)
	}
	return orders, nil
}
