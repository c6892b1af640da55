// Package server is the composition root: it wires storage, services,
// handlers and middleware into one router and runs the HTTP server.
//
//	config + *sqlite.DB → services → handlers → chi router
//
// Each layer only receives what it needs. Services get repository
// interfaces (satisfied by *sqlite.DB), handlers get services.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/config"
	"github.com/sakif/theme-store/internal/handler"
	"github.com/sakif/theme-store/internal/metrics"
	"github.com/sakif/theme-store/internal/middleware"
	"github.com/sakif/theme-store/internal/model"
	sqliteRepo "github.com/sakif/theme-store/internal/repository/sqlite"
	"github.com/sakif/theme-store/internal/service"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 30 * time.Second

// Server holds the router and the dependencies it was built from. It does
// not own the database; whoever opened it closes it.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph and routes.
func New(cfg config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
//	GET  /healthz                  liveness + database ping
//	GET  /metrics                  Prometheus exposition
//	GET  /themes                   catalog listing
//	GET  /themes/{id}              theme detail with reviews
//	POST /auth/register|login|logout
//	GET  /auth/github/login|callback  (only when GitHub is configured)
//	GET  /auth/google/login|callback  (only when Google is configured)
//	GET  /user, PUT /user          signed-in profile
//	POST /orders, GET /orders      signed-in checkout and history
//	GET  /admin/stats              ADMIN only
//	GET  /admin/orders, PUT /admin/orders
//
// Middleware runs in the order it is added. Authenticate never rejects; it
// only resolves the principal so the route groups below can gate on it.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	catalogService := service.NewCatalogService(s.db, s.db, s.config.CaseSensitiveSearch, s.logger)
	orderService := service.NewOrderService(s.db, s.db, s.db, s.db, s.config.IncrementSales, s.logger)
	adminService := service.NewAdminService(s.db, s.db, s.db, s.logger)
	userService := service.NewUserService(s.db, passwords, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)

	// A nil *GitHubProvider stored in the interface would be non-nil, so only
	// assign when configured. Same for Google.
	var github handler.GitHubOAuth
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}
	var google handler.GoogleOAuth
	if s.config.GoogleEnabled() {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	themeHandler := handler.NewThemeHandler(catalogService, s.logger)
	orderHandler := handler.NewOrderHandler(orderService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, google, tokens.TTL(), s.config.CookieSecure, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(auth.Authenticate(tokens))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Get("/themes", themeHandler.HandleList)
	s.router.Get("/themes/{id}", themeHandler.HandleGet)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
		if google != nil {
			r.Get("/google/login", authHandler.HandleGoogleLogin)
			r.Get("/google/callback", authHandler.HandleGoogleCallback)
		}
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/user", userHandler.HandleMe)
		r.Put("/user", userHandler.HandleUpdate)
		r.Post("/orders", orderHandler.HandleCheckout)
		r.Get("/orders", orderHandler.HandleListMine)
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(model.RoleAdmin))

		r.Get("/stats", adminHandler.HandleStats)
		r.Get("/orders", adminHandler.HandleListOrders)
		r.Put("/orders", adminHandler.HandleUpdateOrder)
	})

	return nil
}

// handleHealth reports 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until ctx is cancelled, then drains in-flight requests for up
// to shutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("github", s.config.GitHubEnabled()),
			slog.Bool("google", s.config.GoogleEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
