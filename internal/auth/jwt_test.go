package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/sakif/theme-store/internal/model"
)

// newTestTokenService creates a TokenService with a fixed secret so tests are
// deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func testUser(id string, role model.Role) *model.User {
	return &model.User{ID: id, Email: id + "@example.com", Role: role}
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
	if ts.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultTokenTTL)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testUser("user-123", model.RoleUser))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// header.payload.signature
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

func TestGenerate_RequiresUserID(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Generate(&model.User{}); err == nil {
		t.Error("Generate() should fail for a user without an ID")
	}
	if _, err := ts.Generate(nil); err == nil {
		t.Error("Generate() should fail for a nil user")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTripCarriesRole(t *testing.T) {
	ts := newTestTokenService(t)

	tests := []struct {
		name string
		role model.Role
	}{
		{"user", model.RoleUser},
		{"admin", model.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser("user-abc", tt.role)
			token, err := ts.Generate(user)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			p, err := ts.Validate(token)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if p.ID != user.ID || p.Email != user.Email || p.Role != tt.role {
				t.Errorf("Validate() = %+v, want id=%s email=%s role=%s", p, user.ID, user.Email, tt.role)
			}
		})
	}
}

func TestValidate_EmptyRoleDefaultsToUser(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(Principal{ID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	p, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.Role != model.RoleUser {
		t.Errorf("Role = %q, want USER", p.Role)
	}
}

func TestValidate_UnknownRoleRejected(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(Principal{ID: "u1", Role: "ROOT"}, time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token with an unknown role")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(Principal{ID: "user-123"}, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should return an error for an expired token")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(testUser("user-123", model.RoleUser))
	tampered := token[:len(token)-3] + "xxx"

	if _, err := ts.Validate(tampered); err == nil {
		t.Fatal("Validate() should return an error for a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", time.Hour)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	token, _ := ts1.Generate(testUser("user-123", model.RoleAdmin))

	if _, err := ts2.Validate(token); err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, raw := range []string{"", "not.a.jwt.token"} {
		if _, err := ts.Validate(raw); err == nil {
			t.Errorf("Validate(%q) should return an error", raw)
		}
	}
}
