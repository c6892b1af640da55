// Password hashing for credential sign-in.
//
// BCRYPT IN ONE PARAGRAPH:
// bcrypt is a slow hash by construction. It generates a random salt for every
// call, embeds that salt in its output (no separate salt column), and takes a
// "cost" that doubles the work with each step. Two users with the same
// password get different hashes, and a guess costs an attacker the same
// ~250ms it costs the login handler.
//
// Hash format (the full output of bcrypt.GenerateFromPassword):
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (12 rounds, 2^12 = 4096 iterations)
//	 version
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when BCRYPT_COST is unset or
// out of range. It takes roughly 250ms on a modern server.
//
// COST TUNING RULE OF THUMB:
// Pick the cost at which one hash takes 200 to 300ms on production hardware.
// Each step up doubles the time, for login and for an attacker alike.
const DefaultCost = 12

// ErrInvalidPassword is returned by Verify when the password does not match.
var ErrInvalidPassword = errors.New("auth: invalid password")

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected. Tests use
// bcrypt's minimum of 4, which keeps the logic identical and the suite fast.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost. Values
// outside bcrypt's accepted range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's minimum
// cost (4). Use it from tests in other packages to skip the ~250ms of cost 12
// per hash.
//
// Do NOT use in production: cost 4 is far too weak.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{cost: bcrypt.MinCost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// Store it as is. It carries the salt and cost, and Verify knows how to
// decode it.
//
// Passwords over 72 bytes are rejected: bcrypt would silently truncate them.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored bcrypt hash.
//
// bcrypt re-hashes the plaintext with the salt and cost read from hash and
// compares the results in constant time, so response timing says nothing
// about how much of the password matched. A mismatch returns
// ErrInvalidPassword; a malformed hash returns a wrapped error instead.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
