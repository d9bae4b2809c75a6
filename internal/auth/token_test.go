package auth

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Generate(42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user ID 42, got %d", userID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").Generate(7)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := NewTokenManager("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret")

	past := time.Now().Add(-time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(42, 10),
		IssuedAt:  jwt.NewNumericDate(past.Add(-TokenTTL)),
		ExpiresAt: jwt.NewNumericDate(past),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	if _, err := m.Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := NewTokenManager("test-secret")
	if _, err := m.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
