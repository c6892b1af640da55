package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/repository"
)

const (
	MaxNameLength     = 100
	MinPasswordLength = 8
)

// UpdateProfileInput holds the profile fields to change. Blank fields are
// left as they are.
type UpdateProfileInput struct {
	Name     string
	Email    string
	Password string
}

// UserService manages the signed-in user's own account.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

// Profile returns the principal's own account.
func (s *UserService) Profile(ctx context.Context, p *auth.Principal) (*model.User, error) {
	if p == nil || p.ID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	return s.users.GetUserByID(ctx, p.ID)
}

// UpdateProfile applies the non-blank fields of in to the principal's account.
// A new password is re-hashed; an email already used by another account is a
// conflict.
func (s *UserService) UpdateProfile(ctx context.Context, p *auth.Principal, in UpdateProfileInput) (*model.User, error) {
	if p == nil || p.ID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	user, err := s.users.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if len(name) > MaxNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("name must be %d characters or less", MaxNameLength))
		}
		user.Name = name
	}

	if strings.TrimSpace(in.Email) != "" {
		email, err := normalizeEmail(in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("service/user: hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return user, nil
}

// normalizeEmail validates an address and lower-cases it. Emails are stored
// lower-case so lookups can be exact matches.
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", apperror.ValidationFailed("email", "a valid email address is required")
	}
	return strings.ToLower(addr.Address), nil
}

func validatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(pw) > 72 {
		return apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}
	return nil
}
