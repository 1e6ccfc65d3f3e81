package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect for opaque bearer tokens.
var ErrNotJWT = errors.New("token is not a JWT")

// Inspect decodes the claims of token without verifying its signature.
//
// The HR backend may also issue opaque tokens; those yield ErrNotJWT and callers
// should fall back to server-side expiry (a 401).
func Inspect(token string) (*PortalClaims, error) {
	claims := &PortalClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the "exp" claim of token, if it is a JWT carrying one.
func ExpiresAt(token string) (time.Time, bool) {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
