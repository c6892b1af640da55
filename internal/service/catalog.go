// Package service contains the business rules of the store.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, enforces ownership and lifecycle rules
//	Repository      → reads/writes the database
//
// Services depend on repository interfaces, never on *sqlite.DB, and return
// apperror values that the handler layer maps to HTTP status codes. None of
// them know about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

// MaxThemeListLimit caps the catalog page size.
const MaxThemeListLimit = 100

// CatalogQuery is the raw catalog filter as the caller sent it. List
// normalises it; nothing here has been validated yet.
type CatalogQuery struct {
	Category string
	Search   string
	Sort     string
	Limit    int
}

// CatalogService serves the read-only catalog.
type CatalogService struct {
	themes        repository.ThemeRepository
	reviews       repository.ReviewRepository
	caseSensitive bool
	logger        *slog.Logger
}

// NewCatalogService creates a CatalogService. caseSensitive switches search
// from case-insensitive (the default) to exact-case substring matching.
func NewCatalogService(
	themes repository.ThemeRepository,
	reviews repository.ReviewRepository,
	caseSensitive bool,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		themes:        themes,
		reviews:       reviews,
		caseSensitive: caseSensitive,
		logger:        logger,
	}
}

// List runs the catalog query.
//
// Normalisation rules:
//   - Category "" or "All" means no category filter; otherwise exact match.
//   - An empty search term means no search filter.
//   - An unknown sort key falls back to newest.
//   - Limit <= 0 means no limit; anything above MaxThemeListLimit is capped.
//
// No matches is an empty list, never ErrNotFound.
func (s *CatalogService) List(ctx context.Context, q CatalogQuery) ([]model.ThemeSummary, error) {
	rq := repository.ThemeQuery{
		Category:      strings.TrimSpace(q.Category),
		Search:        strings.TrimSpace(q.Search),
		CaseSensitive: s.caseSensitive,
		Sort:          NormalizeSort(q.Sort),
		Limit:         q.Limit,
	}
	if rq.Category == model.CategoryAll {
		rq.Category = ""
	}
	if rq.Limit < 0 {
		rq.Limit = 0
	}
	if rq.Limit > MaxThemeListLimit {
		rq.Limit = MaxThemeListLimit
	}

	themes, err := s.themes.ListThemes(ctx, rq)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: listing themes: %w", err)
	}

	return themes, nil
}

// Get returns the full theme with its reviews.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.ThemeDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "theme ID is required")
	}

	theme, err := s.themes.GetThemeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListReviewsByTheme(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: listing reviews for theme %s: %w", id, err)
	}

	return &model.ThemeDetail{Theme: *theme, Reviews: reviews}, nil
}

// NormalizeSort maps any input to one of the four known sort keys.
func NormalizeSort(sort string) string {
	switch sort = strings.ToLower(strings.TrimSpace(sort)); sort {
	case model.SortPriceAsc, model.SortPriceDesc, model.SortPopular, model.SortNewest:
		return sort
	}
	return model.SortNewest
}
