package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/theme-store/internal/apperror"
	"github.com/sakif/theme-store/internal/model"
)

// CookieName is the HttpOnly cookie that carries the session JWT.
const CookieName = "token"

// Principal is the authenticated identity resolved from a request's credentials.
type Principal struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// contextKey is unexported so no other package can read or overwrite the
// principal stored under it.
type contextKey string

const principalKey contextKey = "principal"

// Authenticate resolves the Principal for every request and stores it in the
// context. It never blocks: a missing, expired or forged token leaves the
// request anonymous, and the route-level gates decide what that means.
//
// The token is read from the "token" cookie first, then from an
// "Authorization: Bearer" header.
func Authenticate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := tokenFromRequest(r); raw != "" {
				if p, err := tokens.Validate(raw); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
//
// It must run after Authenticate. Chi applies middlewares in order:
// req → Authenticate → RequireAuth → handler.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeGateError(w, errAuthRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole is the single role predicate for a route group. Anonymous
// requests get 401, authenticated ones without the role get 403. The request
// body is never read, so the outcome does not depend on the payload.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeGateError(w, errAuthRequired)
				return
			}
			if p.Role != role {
				writeGateError(w, apperror.Forbidden("You do not have access to this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's principal, or (nil, false) when
// the request is anonymous.
//
// Usage in handlers:
//
//	p, ok := auth.PrincipalFromContext(r.Context())
//	if !ok {
//	    // anonymous
//	}
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil && p.ID != ""
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

var errAuthRequired = apperror.Unauthenticated("Authentication required")

// writeGateError writes the same {"error","message"} shape the handlers use.
// It lives here because the handler package imports auth, not the other way round.
func writeGateError(w http.ResponseWriter, err *apperror.AppError) {
	status, errType := http.StatusUnauthorized, "unauthenticated"
	if errors.Is(err, apperror.ErrForbidden) {
		status, errType = http.StatusForbidden, "forbidden"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": errType, "message": err.Message})
}
