package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jatolabs/projecthub/internal/auth"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Hour)

	raw, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	userID, err := m.VerifyToken(raw)
	if err != nil {
		t.Fatalf("VerifyToken rejected a fresh token: %v", err)
	}

	if userID != 42 {
		t.Fatalf("got user id %d, want 42", userID)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	// negative TTL: the token is already past its expiry when issued
	m := auth.NewManager("test-secret-key", -time.Minute)

	raw, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	_, err = m.VerifyToken(raw)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-one", time.Hour)
	verifier := auth.NewManager("secret-two", time.Hour)

	raw, err := issuer.GenerateToken(7)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := verifier.VerifyToken(raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("token signed with a different secret must not verify, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Hour)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.VerifyToken(raw); !errors.Is(err, auth.ErrInvalidToken) {
			t.Fatalf("VerifyToken(%q) = %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestVerifyTokenTampered(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Hour)

	raw, err := m.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"

	if _, err := m.VerifyToken(tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("tampered token must not verify, got %v", err)
	}
}
