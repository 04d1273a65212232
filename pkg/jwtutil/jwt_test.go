package jwtutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	xerrors "auth-service/pkg/xerrors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSignerRejectsShortSecret(t *testing.T) {
	if _, err := NewSigner("short", "auth-service", time.Hour); err == nil {
		t.Fatal("expected error for undersized secret")
	}
	if _, err := NewVerifier("short", "auth-service"); err == nil {
		t.Fatal("expected error for undersized secret")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	signer, err := NewSigner(testSecret, "auth-service", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	verifier, err := NewVerifier(testSecret, "auth-service")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := signer.Issue("acct-1", "alice@example.com", "candidate")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := verifier.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "acct-1" {
		t.Errorf("uid = %q, want %q", claims.UserID, "acct-1")
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "alice@example.com")
	}
	if claims.Role != "candidate" {
		t.Errorf("role = %q, want %q", claims.Role, "candidate")
	}
}

func TestVerifyFailures(t *testing.T) {
	signer, _ := NewSigner(testSecret, "auth-service", time.Hour)
	verifier, _ := NewVerifier(testSecret, "auth-service")

	t.Run("expired token", func(t *testing.T) {
		expired, _ := NewSigner(testSecret, "auth-service", time.Second)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Second) }

		token, err := expired.Issue("acct-1", "a@example.com", "candidate")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := verifier.ParseAndValidate(token); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewVerifier(strings.Repeat("x", 32), "auth-service")
		token, _ := signer.Issue("acct-1", "a@example.com", "candidate")
		if _, err := other.ParseAndValidate(token); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, _ := NewVerifier(testSecret, "someone-else")
		token, _ := signer.Issue("acct-1", "a@example.com", "candidate")
		if _, err := other.ParseAndValidate(token); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		if _, err := verifier.ParseAndValidate("not.a.jwt"); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if _, err := verifier.ParseAndValidate(""); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})
}
