package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers (49.99), not strings ("49.99").
	decimal.MarshalJSONWithoutQuotes = true
}

// Theme is a catalog product.
//
// Price is a decimal so that cents never drift through float arithmetic.
// Features and Screenshots keep their insertion order.
type Theme struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	Features        []string        `json:"features"`
	Screenshots     []string        `json:"screenshots"`
	Image           string          `json:"image"`
	DemoURL         string          `json:"demoUrl"`
	Rating          float64         `json:"rating"`
	Sales           int             `json:"sales"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ThemeSummary is the list projection of a Theme. The long description,
// features and screenshots are only sent by the detail endpoint.
type ThemeSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      float64         `json:"rating"`
	Sales       int             `json:"sales"`
}

// Summary returns the list projection of t.
func (t *Theme) Summary() ThemeSummary {
	return ThemeSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Price:       t.Price,
		Category:    t.Category,
		Image:       t.Image,
		Rating:      t.Rating,
		Sales:       t.Sales,
	}
}

// ThemeDetail is a full theme plus the reviews left on it.
type ThemeDetail struct {
	Theme
	Reviews []ReviewWithAuthor `json:"reviews"`
}

// Sort keys accepted by the catalog listing.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// CategoryAll is the sentinel category meaning "no filter".
const CategoryAll = "All"
