package jwtutil

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	xerrors "auth-service/pkg/xerrors"
)

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret string, issuer string) (*Verifier, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLen)
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// ParseAndValidate checks signature, expiry and issuer. Expiry is strict:
// no leeway. Any failure collapses to xerrors.ErrInvalidToken so callers
// cannot distinguish a forged token from an expired one.
func (v *Verifier) ParseAndValidate(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, xerrors.ErrInvalidToken
	}
	return claims, nil
}
