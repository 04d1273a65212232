package utils

import (
	"errors"
	"testing"

	xerrors "auth-service/pkg/xerrors"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{"a.b+tag@sub.example.co", true},
		{"", false},
		{"   ", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"alice@", false},
		{"alice@example", false},
	}
	for _, test := range tests {
		if got := ValidateEmail(test.email); got != test.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", test.email, got, test.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "SecurePass123!", nil},
		{"too short", "Ab1!", xerrors.ErrPasswordTooShort},
		{"no uppercase", "securepass123!", xerrors.ErrPasswordUppercase},
		{"no lowercase", "SECUREPASS123!", xerrors.ErrPasswordLowercase},
		{"no digit", "SecurePass!", xerrors.ErrPasswordDigit},
		{"no special", "SecurePass123", xerrors.ErrPasswordSpecialChar},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidatePassword(test.password)
			if test.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePassword(%q) = %v, want nil", test.password, err)
				}
				return
			}
			if !errors.Is(err, test.wantErr) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", test.password, err, test.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecurePass123!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "SecurePass123!" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "SecurePass123!") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "WrongPass123!") {
		t.Error("wrong password accepted")
	}
}
