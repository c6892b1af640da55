package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory implementation of every repository interface plus
// repository.Transactor. InTx snapshots the maps and restores them when fn
// fails, which is enough to observe rollback behaviour from service tests.
//
// Each *Err field, when set, is returned by the matching method.

type fakeStore struct {
	mu sync.Mutex

	users  map[string]*model.User
	themes map[string]*model.Theme
	orders map[string]*model.Order
	seq    int

	getUserErr      error
	createOrderErr  error
	updateStatusErr error
	incrementErr    error
	statsErr        error
	listOrdersErr   error

	lastThemeQuery repository.ThemeQuery
	lastOrderQuery repository.OrderQuery
}

var (
	_ repository.Transactor       = (*fakeStore)(nil)
	_ repository.ThemeRepository  = (*fakeStore)(nil)
	_ repository.ReviewRepository = (*fakeStore)(nil)
	_ repository.OrderRepository  = (*fakeStore)(nil)
	_ repository.UserRepository   = (*fakeStore)(nil)
	_ repository.StatsRepository  = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*model.User),
		themes: make(map[string]*model.Theme),
		orders: make(map[string]*model.Order),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	users := cloneMap(f.users)
	themes := cloneMap(f.themes)
	orders := cloneMap(f.orders)
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.users, f.themes, f.orders = users, themes, orders
		f.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	u.ID = f.nextID("user")
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	u.CreatedAt = time.Now()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	c := *u
	return &c, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) UpdateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	for id, existing := range f.users {
		if id != u.ID && existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeStore) UpsertGitHubUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	var existing *model.User
	for _, candidate := range f.users {
		if candidate.GitHubID == u.GitHubID {
			existing = candidate
		}
	}
	if existing == nil {
		for _, candidate := range f.users {
			if candidate.Email == u.Email {
				existing = candidate
			}
		}
	}
	if existing != nil {
		existing.GitHubID = u.GitHubID
		existing.Name = u.Name
		existing.Image = u.Image
		*u = *existing
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()
	return f.CreateUser(ctx, u)
}

func (f *fakeStore) UpsertGoogleUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	var existing *model.User
	for _, candidate := range f.users {
		if candidate.GoogleID != "" && candidate.GoogleID == u.GoogleID {
			existing = candidate
		}
	}
	if existing == nil {
		for _, candidate := range f.users {
			if candidate.Email == u.Email {
				existing = candidate
			}
		}
	}
	if existing != nil {
		existing.GoogleID = u.GoogleID
		existing.Name = u.Name
		existing.Image = u.Image
		*u = *existing
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()
	return f.CreateUser(ctx, u)
}

func (f *fakeStore) SetUserRole(_ context.Context, email string, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Role = role
			return nil
		}
	}
	return apperror.NotFound("user", email)
}

// --- themes ---

func (f *fakeStore) CreateTheme(_ context.Context, t *model.Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID("theme")
	c := *t
	f.themes[t.ID] = &c
	return nil
}

func (f *fakeStore) GetThemeByID(_ context.Context, id string) (*model.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.themes[id]
	if !ok {
		return nil, apperror.NotFound("theme", id)
	}
	c := *t
	return &c, nil
}

// ListThemes records the query it was given; filtering is the sqlite
// package's job and is tested there.
func (f *fakeStore) ListThemes(_ context.Context, q repository.ThemeQuery) ([]model.ThemeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastThemeQuery = q
	out := make([]model.ThemeSummary, 0, len(f.themes))
	for _, t := range f.themes {
		out = append(out, t.Summary())
	}
	return out, nil
}

func (f *fakeStore) IncrementSales(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return f.incrementErr
	}
	t, ok := f.themes[id]
	if !ok {
		return apperror.NotFound("theme", id)
	}
	t.Sales++
	return nil
}

// --- reviews ---

func (f *fakeStore) CreateReview(context.Context, *model.Review) error { return nil }

func (f *fakeStore) ListReviewsByTheme(context.Context, string) ([]model.ReviewWithAuthor, error) {
	return []model.ReviewWithAuthor{}, nil
}

// --- orders ---

func (f *fakeStore) CreateOrder(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createOrderErr != nil {
		return f.createOrderErr
	}
	o.ID = f.nextID("order")
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	c := *o
	f.orders[o.ID] = &c
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.NotFound("order", id)
	}
	c := *o
	return &c, nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateStatusErr != nil {
		return f.updateStatusErr
	}
	o, ok := f.orders[id]
	if !ok {
		return apperror.NotFound("order", id)
	}
	o.Status = status
	return nil
}

func (f *fakeStore) ListOrdersByUser(_ context.Context, userID string) ([]model.OrderWithTheme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.OrderWithTheme, 0)
	for _, o := range f.orders {
		if o.UserID == userID {
			ow := model.OrderWithTheme{Order: *o}
			if t, ok := f.themes[o.ThemeID]; ok {
				ow.Theme = t.Summary()
			}
			out = append(out, ow)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListOrders(_ context.Context, q repository.OrderQuery) ([]model.AdminOrder, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOrderQuery = q
	if f.listOrdersErr != nil {
		return nil, 0, f.listOrdersErr
	}

	all := make([]model.AdminOrder, 0)
	for _, o := range f.orders {
		if q.Status == "" || o.Status == q.Status {
			all = append(all, f.adminOrderLocked(o))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if q.Offset >= total {
		return []model.AdminOrder{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return all[q.Offset:end], total, nil
}

func (f *fakeStore) GetAdminOrder(_ context.Context, id string) (*model.AdminOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.NotFound("order", id)
	}
	ao := f.adminOrderLocked(o)
	return &ao, nil
}

func (f *fakeStore) adminOrderLocked(o *model.Order) model.AdminOrder {
	ao := model.AdminOrder{Order: *o}
	if u, ok := f.users[o.UserID]; ok {
		ao.User = model.OrderBuyer{Name: u.Name, Email: u.Email}
	}
	if t, ok := f.themes[o.ThemeID]; ok {
		ao.Theme = model.OrderThemeRef{Name: t.Name}
	}
	return ao
}

// --- stats ---

func (f *fakeStore) Stats(context.Context) (*model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	s := &model.Stats{
		TotalThemes: len(f.themes),
		TotalUsers:  len(f.users),
		TotalOrders: len(f.orders),
	}
	for _, o := range f.orders {
		if o.Status == model.OrderCompleted {
			s.TotalSales = s.TotalSales.Add(o.Price)
		}
	}
	return s, nil
}
