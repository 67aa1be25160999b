package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundtrip(t *testing.T) {
	v := NewVerifier("secret-a")

	token, err := v.Sign(&Claims{Email: "alice@example.com", Name: "Alice"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a").Sign(&Claims{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	_, err = NewVerifier("secret-b").Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	v := NewVerifier("secret-a")
	token, err := v.Sign(&Claims{Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := v.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered payload, got %v", err)
	}
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	if _, err := NewVerifier("secret-a").Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsMissingEmail(t *testing.T) {
	v := NewVerifier("secret-a")
	token, err := v.Sign(&Claims{Name: "No Email"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for missing email, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("secret-a")
	token, err := v.Sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	// alg=none tokens must never pass signature verification
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Email: "alice@example.com"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewVerifier("secret-a").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}
