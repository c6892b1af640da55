package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/metrics"
	"github.com/sakif/theme-store/internal/service"
)

const stateCookieName = "oauth_state"

// Accounts is the part of service.AuthService the auth handlers use.
type Accounts interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*service.AuthResult, error)
	LoginOrRegisterGoogle(ctx context.Context, g *auth.GoogleUser) (*service.AuthResult, error)
}

// GitHubOAuth is the part of auth.GitHubProvider the callback flow uses.
type GitHubOAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// GoogleOAuth is the part of auth.GoogleProvider the callback flow uses.
type GoogleOAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// AuthHandler issues and clears sessions.
//
//   - HandleRegister / HandleLogin  → email and password, JSON in and out
//   - HandleGitHubLogin             → redirect to GitHub's authorization page
//   - HandleGitHubCallback          → exchange the code, issue a session, redirect home
//   - HandleGoogleLogin / Callback  → the same flow against Google
//   - HandleLogout                  → clear the session cookie
//
// A session is a JWT. It is returned in the body for API clients and set as
// an HttpOnly cookie for browsers; auth.Authenticate accepts either.
type AuthHandler struct {
	accounts     Accounts
	github       GitHubOAuth // nil when GitHub sign-in is not configured
	google       GoogleOAuth // nil when Google sign-in is not configured
	tokenTTL     time.Duration
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(
	accounts Accounts,
	github GitHubOAuth,
	google GoogleOAuth,
	tokenTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		github:       github,
		google:       google,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /auth/register
// Body: {"name": "...", "email": "...", "password": "..."}
// Response: 201 {"user": UserProfile, "token": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  res.User.Profile(),
		"token": res.Token,
	})
}

// HandleLogin verifies email and password.
//
// HTTP: POST /auth/login
// Body: {"email": "...", "password": "..."}
// Response: {"user": UserProfile, "token": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  res.User.Profile(),
		"token": res.Token,
	})
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// A random state value is stored in a short-lived HttpOnly cookie and echoed
// back by GitHub; HandleGitHubCallback rejects a callback whose state does
// not match, so only flows started here can complete.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.github.AuthURL)
}

// HandleGitHubCallback completes the OAuth flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile
//  3. Find, link or create the local account
//  4. Set the session cookie and redirect home
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	code, ok := h.callbackCode(w, r)
	if !ok {
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		// The service never sees this attempt, so count it here.
		metrics.AuthLoginsTotal.WithLabelValues("github", "failure").Inc()
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res, err := h.accounts.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: sign-in failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGoogleLogin redirects the browser to Google's consent page.
//
// HTTP: GET /auth/google/login
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.google.AuthURL)
}

// HandleGoogleCallback completes the Google flow. An account without a
// verified email is sent home with ?auth=unverified instead of a session.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code, ok := h.callbackCode(w, r)
	if !ok {
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("google", "failure").Inc()
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	res, err := h.accounts.LoginOrRegisterGoogle(r.Context(), gUser)
	if errors.Is(err, apperror.ErrUnauthenticated) {
		h.logger.Info("auth callback: Google email not verified", slog.String("googleID", gUser.Sub))
		http.Redirect(w, r, "/?auth=unverified", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.logger.Error("auth callback: sign-in failed",
			slog.String("googleID", gUser.Sub),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// redirectToProvider stores a fresh state in a short-lived cookie and sends
// the browser to the provider's authorization URL for it.
func (h *AuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, authURL func(state string) string) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL(state), http.StatusTemporaryRedirect)
}

// callbackCode checks the state against the cookie, consumes the cookie and
// returns the authorization code. When ok is false the response has already
// been written.
func (h *AuthHandler) callbackCode(w http.ResponseWriter, r *http.Request) (code string, ok bool) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return "", false
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return "", false
	}

	// single-use
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return "", false
	}

	code = r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return "", false
	}
	return code, true
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Tokens are stateless, so one that was copied elsewhere stays valid until
// it expires. Logout only removes the browser's copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
