// Package auth holds the bearer credential used against the platform API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token carries no expiry claim")

// Token is a bearer credential. The client never verifies the signature —
// that is the server's job — but it does read the registered claims to warn
// before a request is doomed to a 401 round-trip.
type Token string

func (t Token) String() string {
	return string(t)
}

// ExpiresAt returns the exp claim of a JWT credential. Opaque tokens and
// tokens without exp return ErrNoExpiry.
func (t Token) ExpiresAt() (time.Time, error) {
	parser := jwt.NewParser()

	claims := jwt.RegisteredClaims{}

	_, _, err := parser.ParseUnverified(string(t), &claims)
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}

	return claims.ExpiresAt.Time, nil
}

// ExpiresWithin reports whether the credential expires inside the window.
// Unparseable or expiry-less tokens report false; the API's own 401 handling
// is the fallback for those.
func (t Token) ExpiresWithin(window time.Duration) bool {
	expiry, err := t.ExpiresAt()
	if err != nil {
		return false
	}

	return time.Until(expiry) < window
}

// Subject returns the sub claim when present.
func (t Token) Subject() string {
	parser := jwt.NewParser()

	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(string(t), &claims); err != nil {
		return ""
	}

	return claims.Subject
}
