// Package tokens signs and verifies RS256 JWTs. It holds no state; callers
// pass the key and set iat/exp themselves.
package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
)

var parserOptions = []jwt.ParserOption{
	jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	jwt.WithExpirationRequired(),
}

func Encode(c Claims, key *rsa.PrivateKey) (string, error) {
	if key == nil {
		return "", errors.New("tokens: nil signing key")
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, c).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("tokens: sign: %w", err)
	}
	return s, nil
}

// Decode verifies the signature before looking at any claim. An expired but
// correctly signed token returns its claims together with ErrTokenExpired.
func Decode(token string, key *rsa.PublicKey) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		if key == nil {
			return nil, errors.New("nil verification key")
		}
		return key, nil
	}, parserOptions...)

	switch {
	case err == nil:
		return &c, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return &c, ErrTokenExpired
	default:
		return nil, ErrMalformed
	}
}
