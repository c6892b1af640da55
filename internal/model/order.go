package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an Order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderFailed    OrderStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled, OrderFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a final state.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && s != OrderPending
}

// CanTransitionTo reports whether an order in state s may move to next.
//
// Transitions are monotonic: an order can leave PENDING but never return to it.
// Moving between terminal states (e.g. an admin cancelling a completed order)
// is allowed, as is re-applying the current state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return next.Terminal()
}

// Order is a purchase record. Price is what the buyer paid at checkout time,
// independent of later changes to the theme's list price.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	ThemeID   string          `json:"themeId"`
	Price     decimal.Decimal `json:"price"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// OrderWithTheme is an order joined with the summary of the purchased theme,
// as shown on the buyer's dashboard.
type OrderWithTheme struct {
	Order
	Theme ThemeSummary `json:"theme"`
}

// OrderBuyer is the purchaser projection embedded in admin listings.
type OrderBuyer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderThemeRef is the theme projection embedded in admin listings.
type OrderThemeRef struct {
	Name string `json:"name"`
}

// AdminOrder is an order joined with its purchaser and theme name.
type AdminOrder struct {
	Order
	User  OrderBuyer    `json:"user"`
	Theme OrderThemeRef `json:"theme"`
}

// OrderPage is one page of the admin order listing.
type OrderPage struct {
	Orders []AdminOrder `json:"orders"`
	Total  int          `json:"total"`
	Pages  int          `json:"pages"`
}

// Stats are the admin dashboard aggregates.
type Stats struct {
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalThemes int             `json:"totalThemes"`
	TotalUsers  int             `json:"totalUsers"`
	TotalOrders int             `json:"totalOrders"`
}
