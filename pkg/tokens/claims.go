package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/classroom/pkg/principal"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// Claims is the single token shape for both token types.
// Access tokens carry the identity fields; refresh tokens carry only the
// subject (the user's email) and the type.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string         `json:"userId,omitempty"`
	Email     string         `json:"email,omitempty"`
	Role      principal.Role `json:"role,omitempty"`
	Firstname string         `json:"firstname,omitempty"`
	Lastname  string         `json:"lastname,omitempty"`
	TokenType TokenType      `json:"tokenType"`
}

var errClaimShape = errors.New("claims do not match token type")

// Validate is called by the jwt parser after the signature has been verified.
func (c Claims) Validate() error {
	if c.Subject == "" {
		return errClaimShape
	}
	switch c.TokenType {
	case TokenTypeAccess:
		if c.UserID == "" || c.Role == "" {
			return errClaimShape
		}
	case TokenTypeRefresh:
		if c.UserID != "" || c.Role != "" || c.Email != "" {
			return errClaimShape
		}
	default:
		return errClaimShape
	}
	return nil
}

// Principal converts access-token claims into the propagated identity.
func (c Claims) Principal() principal.Principal {
	return principal.Principal{
		UserID:    c.UserID,
		Email:     c.Email,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Role:      c.Role,
	}
}
