// Package repository declares the storage interfaces the service layer depends
// on. The sqlite subpackage implements all of them on one *sqlite.DB.
package repository

import (
	"context"

	"github.com/sakif/theme-store/internal/model"
)

// ThemeQuery filters and orders the catalog listing. The service normalises
// it before it reaches a repository: Sort is always a known key and Limit is
// either 0 (no limit) or positive.
type ThemeQuery struct {
	Category      string
	Search        string
	CaseSensitive bool
	Sort          string
	Limit         int
}

// OrderQuery selects one page of the admin order listing.
type OrderQuery struct {
	Status model.OrderStatus // empty means every status
	Limit  int
	Offset int
}

// Transactor runs fn inside a single storage transaction. Repository calls made
// with the ctx passed to fn join that transaction. If fn returns an error the
// transaction is rolled back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ThemeRepository interface {
	CreateTheme(ctx context.Context, theme *model.Theme) error
	GetThemeByID(ctx context.Context, id string) (*model.Theme, error)
	ListThemes(ctx context.Context, q ThemeQuery) ([]model.ThemeSummary, error)
	IncrementSales(ctx context.Context, id string) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	ListReviewsByTheme(ctx context.Context, themeID string) ([]model.ReviewWithAuthor, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderWithTheme, error)
	ListOrders(ctx context.Context, q OrderQuery) ([]model.AdminOrder, int, error)
	GetAdminOrder(ctx context.Context, id string) (*model.AdminOrder, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	UpsertGoogleUser(ctx context.Context, user *model.User) error
	SetUserRole(ctx context.Context, email string, role model.Role) error
}

// StatsRepository computes the admin dashboard aggregates.
type StatsRepository interface {
	Stats(ctx context.Context) (*model.Stats, error)
}
