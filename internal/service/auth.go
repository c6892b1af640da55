package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/metrics"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

// errBadCredentials is the single answer for every failed password sign-in,
// so responses don't reveal which emails are registered.
var errBadCredentials = apperror.Unauthenticated("Invalid email or password")

// AuthService signs users in and issues session tokens.
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
//
// It does not set cookies or read requests; that is the handler's job.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued JWT so the handler can set the
// cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a USER account with a bcrypt-hashed password and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("register", "failure").Inc()
		return nil, err
	}

	metrics.AuthLoginsTotal.WithLabelValues("register", "success").Inc()
	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user)
}

// Login checks email and password. Unknown email, wrong password and
// password-less (OAuth-only) accounts all get the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.AuthLoginsTotal.WithLabelValues("password", "failure").Inc()
		return nil, errBadCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			metrics.AuthLoginsTotal.WithLabelValues("password", "failure").Inc()
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if user.PasswordHash == "" {
		metrics.AuthLoginsTotal.WithLabelValues("password", "failure").Inc()
		return nil, errBadCredentials
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("password", "failure").Inc()
		if errors.Is(err, auth.ErrInvalidPassword) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	metrics.AuthLoginsTotal.WithLabelValues("password", "success").Inc()
	s.logger.Info("user signed in", slog.String("userID", user.ID), slog.String("method", "password"))

	return s.issue(user)
}

// LoginOrRegisterGitHub signs in a GitHub identity, creating or linking the
// account as needed.
//
// GitHub may hide the email; the account then gets GitHub's noreply address
// so the unique email column still holds a stable value.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || gh.ID == 0 {
		return nil, fmt.Errorf("service/auth: GitHub user must not be empty")
	}

	email := strings.ToLower(strings.TrimSpace(gh.Email))
	if email == "" {
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", gh.ID, strings.ToLower(gh.Login))
	}

	user := &model.User{
		GitHubID: gh.ID,
		Name:     gh.DisplayName(),
		Email:    email,
		Image:    gh.AvatarURL,
		Role:     model.RoleUser,
	}
	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("github", "failure").Inc()
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", gh.ID, err)
	}

	metrics.AuthLoginsTotal.WithLabelValues("github", "success").Inc()
	s.logger.Info("user signed in",
		slog.String("userID", user.ID),
		slog.String("method", "github"),
		slog.String("login", gh.Login),
	)

	return s.issue(user)
}

// LoginOrRegisterGoogle signs in a Google identity, creating or linking the
// account as needed. Only a verified email may be linked to an existing
// account, so an unverified one is refused outright.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, g *auth.GoogleUser) (*AuthResult, error) {
	if g == nil || g.Sub == "" {
		return nil, fmt.Errorf("service/auth: Google user must not be empty")
	}

	email := strings.ToLower(strings.TrimSpace(g.Email))
	if email == "" || !g.EmailVerified {
		metrics.AuthLoginsTotal.WithLabelValues("google", "failure").Inc()
		return nil, apperror.Unauthenticated("Google account has no verified email")
	}

	user := &model.User{
		GoogleID: g.Sub,
		Name:     g.DisplayName(),
		Email:    email,
		Image:    g.Picture,
		Role:     model.RoleUser,
	}
	if err := s.users.UpsertGoogleUser(ctx, user); err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("google", "failure").Inc()
		return nil, fmt.Errorf("service/auth: upserting user (googleID=%s): %w", g.Sub, err)
	}

	metrics.AuthLoginsTotal.WithLabelValues("google", "success").Inc()
	s.logger.Info("user signed in", slog.String("userID", user.ID), slog.String("method", "google"))

	return s.issue(user)
}

// PromoteToAdmin grants the ADMIN role to the account with the given email.
// The user's existing tokens keep their old role until they sign in again.
func (s *AuthService) PromoteToAdmin(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if err := s.users.SetUserRole(ctx, email, model.RoleAdmin); err != nil {
		return err
	}
	s.logger.Info("user promoted to admin", slog.String("email", email))
	return nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
