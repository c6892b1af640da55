package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

// Catalog is the part of service.CatalogService the theme handlers use.
type Catalog interface {
	List(ctx context.Context, q service.CatalogQuery) ([]model.ThemeSummary, error)
	Get(ctx context.Context, id string) (*model.ThemeDetail, error)
}

// ThemeHandler serves the public catalog.
type ThemeHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

func NewThemeHandler(catalog Catalog, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{catalog: catalog, logger: logger}
}

// HandleList lists themes.
//
// HTTP: GET /themes?category=Blog&q=portfolio&sort=price_asc&limit=6
// Response: {"themes": [ThemeSummary...]}
func (h *ThemeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	themes, err := h.catalog.List(r.Context(), service.CatalogQuery{
		Category: q.Get("category"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
		Limit:    queryInt(r, "limit", 0),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"themes": themes})
}

// HandleGet returns one theme with its reviews.
//
// HTTP: GET /themes/{id}
// Response: {"theme": ThemeDetail}
func (h *ThemeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	theme, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"theme": theme})
}
