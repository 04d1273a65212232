package utils

import (
	"regexp"
	"strings"

	xerrors "auth-service/pkg/xerrors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email address. Accounts are keyed by
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return xerrors.ErrPasswordTooShort
	}
	if len(password) > 100 {
		return xerrors.ErrPasswordTooLong
	}

	upper := regexp.MustCompile(`[A-Z]`)
	if !upper.MatchString(password) {
		return xerrors.ErrPasswordUppercase
	}

	lower := regexp.MustCompile(`[a-z]`)
	if !lower.MatchString(password) {
		return xerrors.ErrPasswordLowercase
	}

	digit := regexp.MustCompile(`[0-9]`)
	if !digit.MatchString(password) {
		return xerrors.ErrPasswordDigit
	}

	special := regexp.MustCompile(`[!@#\$%\^&\*\(\)_\+\-=\[\]\{\}\\|;:'",.<>\/?]`)
	if !special.MatchString(password) {
		return xerrors.ErrPasswordSpecialChar
	}

	return nil
}
