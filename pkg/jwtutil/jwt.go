package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the session token payload: account identity plus role, nothing
// else. Tokens are stateless, so whatever is in here is what downstream
// authorization sees until expiry.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// MinSecretLen is the minimum HS256 signing secret length. Anything shorter
// is a fatal configuration error at startup.
const MinSecretLen = 32
