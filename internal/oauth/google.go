package oauth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/placereviews/auth-api/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const ProviderGoogle = "google"

var googleIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

var ErrInvalidIDToken = errors.New("invalid id_token")

// GoogleProvider exchanges authorization codes obtained by the mobile client.
type GoogleProvider struct {
	cfg *oauth2.Config
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Exchange trades code for tokens and reads the identity from the id_token.
// The id_token comes straight from Google's token endpoint over TLS, so its
// claims are checked without fetching signing keys.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*domain.FederatedIdentity, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: missing from token response", ErrInvalidIDToken)
	}

	return parseGoogleIDToken(rawIDToken, g.cfg.ClientID)
}

func parseGoogleIDToken(raw, audience string) (*domain.FederatedIdentity, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	iss, _ := claims["iss"].(string)
	if !googleIssuers[iss] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, iss)
	}

	aud, err := claims.GetAudience()
	if err != nil || !slices.Contains(aud, audience) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidIDToken)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidIDToken)
	}
	if exp.Time.Before(time.Now()) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidIDToken)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: missing email/sub", ErrInvalidIDToken)
	}

	emailVerified, _ := claims["email_verified"].(bool)
	name, _ := claims["name"].(string)

	return &domain.FederatedIdentity{
		Provider:      ProviderGoogle,
		Subject:       sub,
		Email:         email,
		EmailVerified: emailVerified,
		Name:          name,
	}, nil
}
