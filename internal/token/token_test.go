package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inkpress/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	uid := uuid.New()
	raw, err := iss.Issue(uid, models.RoleAdmin, "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(raw, ".") != 2 {
		t.Fatalf("expected a three-part JWT, got %q", raw)
	}

	claims, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != uid {
		t.Errorf("uid: got %s, want %s", claims.UserID, uid)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role: got %q", claims.Role)
	}
	if claims.SessionID() != "sess-1" {
		t.Errorf("session: got %q", claims.SessionID())
	}
}

func TestNewIssuerRejectsEmptySecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestNewIssuerDefaultTTL(t *testing.T) {
	iss, err := NewIssuer("s", 0)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	if iss.TTL() != DefaultTTL {
		t.Errorf("ttl: got %v, want %v", iss.TTL(), DefaultTTL)
	}
}

func TestParseWrongSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", time.Hour)
	b, _ := NewIssuer("secret-b", time.Hour)

	raw, err := a.Issue(uuid.New(), models.RoleMember, "s")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Parse(raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	raw, err := iss.Issue(uuid.New(), models.RoleMember, "s")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	iss.now = time.Now
	if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for expired token, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "s",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for alg=none, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	for _, raw := range []string{"", "abc", "a.b.c"} {
		if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q): expected ErrInvalid, got %v", raw, err)
		}
	}
}
