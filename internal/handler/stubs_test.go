package handler_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubCatalog records the last query and returns canned results.
type stubCatalog struct {
	gotQuery service.CatalogQuery
	gotID    string
	themes   []model.ThemeSummary
	detail   *model.ThemeDetail
	err      error
}

func (s *stubCatalog) List(_ context.Context, q service.CatalogQuery) ([]model.ThemeSummary, error) {
	s.gotQuery = q
	return s.themes, s.err
}

func (s *stubCatalog) Get(_ context.Context, id string) (*model.ThemeDetail, error) {
	s.gotID = id
	return s.detail, s.err
}

type stubOrders struct {
	gotPrincipal *auth.Principal
	gotInput     service.CheckoutInput
	order        *model.Order
	orders       []model.OrderWithTheme
	err          error
}

func (s *stubOrders) Checkout(_ context.Context, p *auth.Principal, in service.CheckoutInput) (*model.Order, error) {
	s.gotPrincipal = p
	s.gotInput = in
	return s.order, s.err
}

func (s *stubOrders) ListMine(_ context.Context, p *auth.Principal) ([]model.OrderWithTheme, error) {
	s.gotPrincipal = p
	return s.orders, s.err
}

type stubAdmin struct {
	gotQuery  service.AdminOrderQuery
	gotID     string
	gotStatus string
	stats     *model.Stats
	page      *model.OrderPage
	order     *model.AdminOrder
	err       error
}

func (s *stubAdmin) Stats(context.Context) (*model.Stats, error) {
	return s.stats, s.err
}

func (s *stubAdmin) ListOrders(_ context.Context, q service.AdminOrderQuery) (*model.OrderPage, error) {
	s.gotQuery = q
	return s.page, s.err
}

func (s *stubAdmin) UpdateOrderStatus(_ context.Context, id, status string) (*model.AdminOrder, error) {
	s.gotID, s.gotStatus = id, status
	return s.order, s.err
}

type stubUsers struct {
	gotInput service.UpdateProfileInput
	user     *model.User
	err      error
}

func (s *stubUsers) Profile(context.Context, *auth.Principal) (*model.User, error) {
	return s.user, s.err
}

func (s *stubUsers) UpdateProfile(_ context.Context, _ *auth.Principal, in service.UpdateProfileInput) (*model.User, error) {
	s.gotInput = in
	return s.user, s.err
}

type stubAccounts struct {
	gotName, gotEmail, gotPassword string
	gotGitHub                      *auth.GitHubUser
	gotGoogle                      *auth.GoogleUser
	result                         *service.AuthResult
	err                            error
}

func (s *stubAccounts) Register(_ context.Context, name, email, password string) (*service.AuthResult, error) {
	s.gotName, s.gotEmail, s.gotPassword = name, email, password
	return s.result, s.err
}

func (s *stubAccounts) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	s.gotEmail, s.gotPassword = email, password
	return s.result, s.err
}

func (s *stubAccounts) LoginOrRegisterGitHub(_ context.Context, gh *auth.GitHubUser) (*service.AuthResult, error) {
	s.gotGitHub = gh
	return s.result, s.err
}

func (s *stubAccounts) LoginOrRegisterGoogle(_ context.Context, g *auth.GoogleUser) (*service.AuthResult, error) {
	s.gotGoogle = g
	return s.result, s.err
}

type stubGitHub struct {
	gotCode string
	user    *auth.GitHubUser
	err     error
}

func (s *stubGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + state
}

func (s *stubGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	s.gotCode = code
	return s.user, s.err
}

type stubGoogle struct {
	gotCode string
	user    *auth.GoogleUser
	err     error
}

func (s *stubGoogle) AuthURL(state string) string {
	return "https://google.example/auth?state=" + state
}

func (s *stubGoogle) Exchange(_ context.Context, code string) (*auth.GoogleUser, error) {
	s.gotCode = code
	return s.user, s.err
}
