package service

import (
	"fmt"
	"time"

	"github.com/placereviews/auth-api/internal/domain"
)

// Session is a freshly issued session token
type Session struct {
	Token     string
	ExpiresIn time.Duration
	Account   *domain.Account
}

// SigninResult is either a session or a request to verify the account first
type SigninResult struct {
	Session              *Session
	RequiresVerification bool
}

// newSession signs a session token for account
func (s *authService) newSession(account *domain.Account) (*Session, error) {
	token, err := s.jwtManager.GenerateSessionToken(domain.NewSessionClaims(account))
	if err != nil {
		return nil, internalError("failed to issue session", fmt.Errorf("failed to generate session token: %w", err))
	}

	return &Session{
		Token:     token,
		ExpiresIn: s.jwtManager.Expiry(),
		Account:   account,
	}, nil
}
