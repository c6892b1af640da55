// Package auth is the identity and access gate of the store.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The user signs in (POST /auth/login, /auth/register, or GitHub OAuth)
//  2. The server issues a signed JWT and stores it in an HttpOnly "token" cookie
//     (API clients can send the same token as "Authorization: Bearer <jwt>")
//  3. Authenticate middleware validates the token on every request and puts a
//     Principal {id, email, role} into the request context
//  4. RequireAuth and RequireRole decide, once per route group, whether the
//     request may continue
//
// The JWT carries the role, so the admin check needs no database lookup. A role
// change (e.g. the promote command) takes effect on the user's next sign-in.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/theme-store/internal/model"
)

const issuer = "theme-store"

// DefaultTokenTTL is used when NewTokenService is given a non-positive TTL.
const DefaultTokenTTL = 24 * time.Hour

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens, and the lifetime
// of issued tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the lifetime of issued tokens. Handlers use it as the cookie MaxAge.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. "sub" holds the internal user ID; email and role
// are private claims so the gate can build a Principal without a DB lookup.
type claims struct {
	Email string     `json:"email,omitempty"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT for the given user with the configured TTL.
//
// Signing algorithm: HS256 (HMAC-SHA256), symmetric, one secret for signing
// and verifying. Fine for a single-service deployment.
func (s *TokenService) Generate(user *model.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("auth: cannot issue a token without a user ID")
	}
	return s.GenerateWithDuration(Principal{ID: user.ID, Email: user.Email, Role: user.Role}, s.ttl)
}

// GenerateWithDuration creates a token for p with a custom expiry duration.
// Used in tests (negative durations produce already-expired tokens).
func (s *TokenService) GenerateWithDuration(p Principal, d time.Duration) (string, error) {
	now := time.Now()

	role := p.Role
	if role == "" {
		role = model.RoleUser
	}

	c := claims{
		Email: p.Email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the Principal it encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, and has an expiry at all
//   - Issuer matches "theme-store"
//   - Algorithm is HS256 (jwt.WithValidMethods blocks the "none" algorithm trick)
//
// A token whose role claim is not a known role is rejected rather than
// downgraded.
func (s *TokenService) Validate(tokenStr string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errors.New("auth: invalid token claims")
	}

	if c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}
	if !c.Role.Valid() {
		return nil, fmt.Errorf("auth: token has unknown role %q", c.Role)
	}

	return &Principal{ID: c.Subject, Email: c.Email, Role: c.Role}, nil
}
