package domain

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the claim bundle carried by a session token.
type SessionClaims struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Verified  bool   `json:"verified"`
	jwt.RegisteredClaims
}

// NewSessionClaims builds the claim bundle for an account.
func NewSessionClaims(account *Account) SessionClaims {
	return SessionClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Username:  account.Username,
		Verified:  account.Verified,
	}
}
