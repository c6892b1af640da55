package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

// Admin is the part of service.AdminService the admin handlers use.
type Admin interface {
	Stats(ctx context.Context) (*model.Stats, error)
	ListOrders(ctx context.Context, q service.AdminOrderQuery) (*model.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*model.AdminOrder, error)
}

// AdminHandler serves the admin panel. The whole /admin group is gated by
// auth.RequireRole(model.RoleAdmin), so no handler here checks the role.
type AdminHandler struct {
	admin  Admin
	logger *slog.Logger
}

func NewAdminHandler(admin Admin, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// HandleStats returns the dashboard aggregates.
//
// HTTP: GET /admin/stats
// Response: {"totalSales": 0, "totalThemes": 0, "totalUsers": 0, "totalOrders": 0}
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleListOrders returns one page of all orders.
//
// HTTP: GET /admin/orders?status=COMPLETED&page=2&limit=10
// Response: {"orders": [...], "total": 15, "pages": 2}
func (h *AdminHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.admin.ListOrders(r.Context(), service.AdminOrderQuery{
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", service.DefaultOrderPageLimit),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

type updateOrderRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleUpdateOrder changes an order's status.
//
// HTTP: PUT /admin/orders
// Body: {"id": "...", "status": "CANCELLED"}
// Response: {"order": AdminOrder}
func (h *AdminHandler) HandleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	order, err := h.admin.UpdateOrderStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}
