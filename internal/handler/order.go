package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

// Orders is the part of service.OrderService the order handlers use.
type Orders interface {
	Checkout(ctx context.Context, p *auth.Principal, in service.CheckoutInput) (*model.Order, error)
	ListMine(ctx context.Context, p *auth.Principal) ([]model.OrderWithTheme, error)
}

// OrderHandler serves the buyer's checkout and order history.
// Both routes sit behind auth.RequireAuth.
type OrderHandler struct {
	orders Orders
	logger *slog.Logger
}

func NewOrderHandler(orders Orders, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type checkoutRequest struct {
	ThemeID string           `json:"themeId"`
	Price   *decimal.Decimal `json:"price"`
}

// HandleCheckout buys a theme.
//
// HTTP: POST /orders
// Body: {"themeId": "...", "price": 49.99}  (price is optional and advisory)
// Response: 201 {"order": Order}
func (h *OrderHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	order, err := h.orders.Checkout(r.Context(), p, service.CheckoutInput{
		ThemeID: req.ThemeID,
		Price:   req.Price,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"order": order})
}

// HandleListMine returns the caller's orders.
//
// HTTP: GET /orders
// Response: {"orders": [OrderWithTheme...]}
func (h *OrderHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	orders, err := h.orders.ListMine(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
