package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/securecookie"

	"auth-service/pkg/response"
)

// CSRFCookie holds the signed half of the double-submit pair.
const CSRFCookie = "csrf_token"

// CSRFHeader is where clients echo the token back on state-changing requests.
const CSRFHeader = "X-CSRF-Token"

// CSRFGuard implements double-submit CSRF: the token travels once inside a
// signed cookie and once in a request header; a state-changing request is
// accepted only when both halves match.
type CSRFGuard struct {
	sc     *securecookie.SecureCookie
	secure bool
}

func NewCSRFGuard(secret string, secure bool) *CSRFGuard {
	return &CSRFGuard{
		sc:     securecookie.New([]byte(secret), nil),
		secure: secure,
	}
}

// IssueToken mints a fresh token, sets the signed cookie and returns the
// plaintext token for the client to echo in CSRFHeader.
func (g *CSRFGuard) IssueToken(w http.ResponseWriter) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	encoded, err := g.sc.Encode(CSRFCookie, token)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Verify gates state-changing methods; reads pass through untouched.
func (g *CSRFGuard) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookie)
		if err != nil {
			response.Error(w, http.StatusForbidden, "missing csrf cookie")
			return
		}

		var token string
		if err := g.sc.Decode(CSRFCookie, cookie.Value, &token); err != nil {
			response.Error(w, http.StatusForbidden, "invalid csrf cookie")
			return
		}

		header := r.Header.Get(CSRFHeader)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
			response.Error(w, http.StatusForbidden, "csrf token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}
