package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/handler"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

// withURLParam injects a chi route parameter the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestThemeHandler_HandleList(t *testing.T) {
	t.Run("passes query parameters through", func(t *testing.T) {
		catalog := &stubCatalog{themes: []model.ThemeSummary{
			{ID: "t1", Name: "Modern Portfolio", Price: decimal.RequireFromString("49.99"), Category: "Portfolio"},
		}}
		h := handler.NewThemeHandler(catalog, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/themes?category=Portfolio&q=modern&sort=price_asc&limit=6", nil)
		rr := httptest.NewRecorder()
		h.HandleList(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, service.CatalogQuery{
			Category: "Portfolio",
			Search:   "modern",
			Sort:     "price_asc",
			Limit:    6,
		}, catalog.gotQuery)

		var body struct {
			Themes []map[string]any `json:"themes"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Len(t, body.Themes, 1)
		assert.Equal(t, "Modern Portfolio", body.Themes[0]["name"])
		assert.Equal(t, 49.99, body.Themes[0]["price"], "price should be a JSON number")
	})

	t.Run("unparsable limit falls back to no limit", func(t *testing.T) {
		catalog := &stubCatalog{themes: []model.ThemeSummary{}}
		h := handler.NewThemeHandler(catalog, testLogger())

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/themes?limit=lots", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 0, catalog.gotQuery.Limit)
		assert.JSONEq(t, `{"themes":[]}`, rr.Body.String())
	})

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		catalog := &stubCatalog{err: errors.New("sqlite: disk I/O error")}
		h := handler.NewThemeHandler(catalog, testLogger())

		rr := httptest.NewRecorder()
		h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/themes", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "sqlite")
		assert.JSONEq(t, `{"error":"internal_error","message":"An internal error occurred"}`, rr.Body.String())
	})
}

func TestThemeHandler_HandleGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		catalog := &stubCatalog{detail: &model.ThemeDetail{
			Theme:   model.Theme{ID: "abc", Name: "Creative Blog", Features: []string{"Dark mode"}},
			Reviews: []model.ReviewWithAuthor{},
		}}
		h := handler.NewThemeHandler(catalog, testLogger())

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/themes/abc", nil), "id", "abc")
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc", catalog.gotID)

		var body struct {
			Theme model.ThemeDetail `json:"theme"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Creative Blog", body.Theme.Name)
		assert.Equal(t, []string{"Dark mode"}, body.Theme.Features)
	})

	t.Run("not found", func(t *testing.T) {
		catalog := &stubCatalog{err: apperror.NotFound("theme", "missing")}
		h := handler.NewThemeHandler(catalog, testLogger())

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/themes/missing", nil), "id", "missing")
		rr := httptest.NewRecorder()
		h.HandleGet(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body handler.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "not_found", body.Error)
	})
}
