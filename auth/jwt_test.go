package auth

import (
	"errors"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenManager(t *testing.T, now func() time.Time) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(TokenManagerConfig{
		Secret: testSecret,
		TTL:    time.Hour,
		Issuer: "mini-task-tracker",
		Now:    now,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	return tm
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t, nil)

	raw, err := tm.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := tm.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("Parse() claims = %+v, want user-1/a@example.com", claims)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tm := newTestTokenManager(t, func() time.Time { return now })

	raw, err := tm.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	now = now.Add(2 * time.Hour)

	if _, err := tm.Parse(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Parse() error = %v, want ErrTokenExpired", err)
	}
}

func TestTokenTamperedSignature(t *testing.T) {
	tm := newTestTokenManager(t, nil)

	raw, err := tm.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"
	if _, err := tm.Parse(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse(tampered) error = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tm := newTestTokenManager(t, nil)
	other, err := NewTokenManager(TokenManagerConfig{Secret: []byte("another-secret-another-secret-12")})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	raw, err := other.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := tm.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("Parse(foreign token) error = %v, want ErrTokenInvalid", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager(TokenManagerConfig{}); err == nil {
		t.Fatal("NewTokenManager() should reject an empty secret")
	}
}
