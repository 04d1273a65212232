package xerrors

import (
	"errors"
	"net/http"
)

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
)

// Registration / Login
var (
	ErrUserAlreadyExists  = errors.New("account already exists")
	ErrUserNotFound       = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")

	ErrEmailRequired     = errors.New("email required")
	ErrPasswordRequired  = errors.New("password required")
	ErrNameRequired      = errors.New("name required")

	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// Social auth
var (
	// ErrSocialAccountOnly is returned for password login against an account
	// that was created through a provider and never set a password. The
	// response is deterministic and distinct from ErrInvalidCredentials so the
	// client can tell the user to use the provider button instead.
	ErrSocialAccountOnly   = errors.New("social account only, sign in with your provider")
	ErrOAuthExchangeFailed = errors.New("oauth exchange failed")
	ErrOAuthStateMismatch  = errors.New("oauth state mismatch")
)

// Password rules
var (
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must not exceed 100 characters")
	ErrPasswordUppercase   = errors.New("password must include at least one uppercase letter")
	ErrPasswordLowercase   = errors.New("password must include at least one lowercase letter")
	ErrPasswordDigit       = errors.New("password must include at least one digit")
	ErrPasswordSpecialChar = errors.New("password must include at least one special character")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Request gate
var (
	ErrRateLimited  = errors.New("too many requests")
	ErrCSRFMismatch = errors.New("csrf token mismatch")
)

// HTTPStatus maps an error kind to its response status. Unknown errors are
// internal server errors; callers must not leak their message to clients in
// production.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidEmailFormat),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong),
		errors.Is(err, ErrPasswordUppercase),
		errors.Is(err, ErrPasswordLowercase),
		errors.Is(err, ErrPasswordDigit),
		errors.Is(err, ErrPasswordSpecialChar):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrEmailAlreadyInUse):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSocialAccountOnly),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrCSRFMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		// ErrOAuthExchangeFailed lands here on purpose: opaque to the client.
		return http.StatusInternalServerError
	}
}
