// ABOUTME: HS256 access and refresh tokens for locally issued sessions.
// ABOUTME: Both carry the user id as subject and the session id as jti.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer  = "wellness"
	kindAccess   = "access"
	kindRefresh  = "refresh"
	signingAlgHS = "HS256"
)

type tokenClaims struct {
	Email string `json:"email"`
	Kind  string `json:"typ"`
	jwt.RegisteredClaims
}

type tokenSigner struct {
	secret []byte
	now    func() time.Time
}

func (t tokenSigner) sign(kind, userID, email, sessionID string, ttl time.Duration) (string, time.Time, error) {
	issued := t.now()
	expires := issued.Add(ttl)
	claims := tokenClaims{
		Email: email,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, expires, nil
}

// parse verifies raw and checks it is a token of the wanted kind. Expired
// tokens yield ErrSessionExpired; anything else invalid yields
// ErrInvalidCredentials.
func (t tokenSigner) parse(raw, kind string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{signingAlgHS}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrSessionExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case claims.Kind != kind:
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidCredentials, kind)
	}
	return claims, nil
}
