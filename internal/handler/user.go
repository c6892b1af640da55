package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/model"
	"github.com/sakif/theme-store/internal/service"
)

// Users is the part of service.UserService the profile handlers use.
type Users interface {
	Profile(ctx context.Context, p *auth.Principal) (*model.User, error)
	UpdateProfile(ctx context.Context, p *auth.Principal, in service.UpdateProfileInput) (*model.User, error)
}

// UserHandler serves the signed-in user's own profile.
type UserHandler struct {
	users  Users
	logger *slog.Logger
}

func NewUserHandler(users Users, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the caller's profile.
//
// HTTP: GET /user
// Response: {"user": UserProfile}
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	user, err := h.users.Profile(r.Context(), p)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user.Profile()})
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleUpdate changes name, email and/or password. Blank fields are ignored.
//
// HTTP: PUT /user
// Body: {"name": "...", "email": "...", "password": "..."}
// Response: {"user": {"id", "name", "email"}}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.users.UpdateProfile(r.Context(), p, service.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": model.UserProfile{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}})
}
