package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/repository"
	"github.com/placereviews/auth-api/internal/utils"
	"go.uber.org/zap"
)

const (
	federatedUsernameMaxBase = 14
	federatedUsernameTries   = 5
)

// SigninWithGoogle exchanges an authorization code with the identity provider
// and signs the matching account in, creating it on first use.
func (s *authService) SigninWithGoogle(ctx context.Context, req *dto.GoogleSigninRequest) (*Session, error) {
	if s.federated == nil {
		return nil, newError(KindNotFound, MsgFederatedDisabled)
	}

	req.Code = strings.TrimSpace(req.Code)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	identity, err := s.federated.Exchange(ctx, req.Code)
	if err != nil {
		s.logger.Info("Federated exchange rejected", zap.Error(err))
		s.metrics.signin(ctx, "federated_rejected")
		return nil, &Error{Kind: KindAuth, Message: MsgFederatedFailed, Err: err}
	}

	account, err := s.accountBySubject(ctx, identity)
	if err != nil {
		return nil, err
	}

	if account == nil {
		account, err = s.accountByFederatedEmail(ctx, identity)
		if err != nil {
			return nil, err
		}
		s.linkIdentity(ctx, account, identity)
	}

	session, err := s.newSession(account)
	if err != nil {
		return nil, err
	}

	s.metrics.signin(ctx, "federated_success")
	return session, nil
}

// accountBySubject returns the account already linked to the provider
// subject, or nil when there is none.
func (s *authService) accountBySubject(ctx context.Context, identity *domain.FederatedIdentity) (*domain.Account, error) {
	if identity.Subject == "" {
		return nil, nil
	}

	link, err := s.identities.GetBySubject(ctx, identity.Provider, identity.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("failed to get identity", err)
	}

	account, err := s.accounts.GetByID(ctx, link.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("failed to get account", err)
	}
	return account, nil
}

// accountByFederatedEmail finds the account by the email the provider
// asserts, creating a federated account on first sign-in.
func (s *authService) accountByFederatedEmail(ctx context.Context, identity *domain.FederatedIdentity) (*domain.Account, error) {
	email := utils.SanitizeEmail(identity.Email)

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.linkFederated(ctx, account, identity); err != nil {
			return nil, err
		}
		return account, nil
	case errors.Is(err, repository.ErrNotFound):
		if !identity.EmailVerified {
			return nil, newError(KindAuth, MsgFederatedUnverified)
		}
		return s.createFederated(ctx, email)
	default:
		return nil, internalError("failed to get account", err)
	}
}

// linkIdentity records the provider subject so later sign-ins do not depend
// on the email. Failing to record it does not fail the sign-in.
func (s *authService) linkIdentity(ctx context.Context, account *domain.Account, identity *domain.FederatedIdentity) {
	if identity.Subject == "" {
		return
	}

	link := &domain.IdentityLink{
		AccountID: account.ID,
		Provider:  identity.Provider,
		Subject:   identity.Subject,
	}
	if identity.Email != "" {
		email := utils.SanitizeEmail(identity.Email)
		link.Email = &email
	}

	err := s.identities.Link(ctx, link)
	if err != nil && !errors.Is(err, repository.ErrDuplicateIdentity) {
		s.logger.Warn("Failed to link federated identity",
			zap.String("account_id", account.ID),
			zap.String("provider", identity.Provider),
			zap.Error(err),
		)
	}
}

// linkFederated lets an existing account sign in through a provider subject
// it is not linked to yet. The provider must have verified the email, whatever
// the account's own provider is. Unverified accounts become verified.
func (s *authService) linkFederated(ctx context.Context, account *domain.Account, identity *domain.FederatedIdentity) error {
	if !identity.EmailVerified {
		return newError(KindConflict, MsgFederatedUnverified)
	}

	if account.Verified {
		return nil
	}

	if err := s.accounts.MarkVerified(ctx, account.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return internalError("failed to verify account", err)
	}
	account.Verified = true
	account.VerificationCode = nil
	account.VerificationCodeIssuedAt = nil
	return nil
}

func (s *authService) createFederated(ctx context.Context, email string) (*domain.Account, error) {
	base := federatedUsernameBase(email)

	for attempt := 0; attempt < federatedUsernameTries; attempt++ {
		username, err := s.pickUsername(ctx, base, attempt > 0)
		if err != nil {
			return nil, err
		}

		account := &domain.Account{
			Email:        email,
			Username:     username,
			Verified:     true,
			AuthProvider: domain.AuthProviderFederated,
		}

		err = s.accounts.Create(ctx, account)
		switch {
		case err == nil:
			s.metrics.signup(ctx)
			return account, nil
		case errors.Is(err, repository.ErrDuplicateUsername):
			continue
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, newError(KindConflict, MsgEmailTaken)
		default:
			return nil, internalError("failed to create account", err)
		}
	}

	return nil, internalError("failed to create account", fmt.Errorf("no free username for %q", base))
}

// pickUsername returns base when it is free, otherwise base plus a random suffix
func (s *authService) pickUsername(ctx context.Context, base string, forceSuffix bool) (string, error) {
	if !forceSuffix {
		_, err := s.accounts.GetByUsername(ctx, base)
		if errors.Is(err, repository.ErrNotFound) {
			return base, nil
		}
		if err != nil {
			return "", internalError("failed to check username", err)
		}
	}

	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", internalError("failed to generate username", err)
	}
	return fmt.Sprintf("%s_%05d", base, n.Int64()), nil
}

// federatedUsernameBase derives a username from the local part of email
func federatedUsernameBase(email string) string {
	local, _, _ := strings.Cut(email, "@")

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}

	base := b.String()
	if len(base) > federatedUsernameMaxBase {
		base = base[:federatedUsernameMaxBase]
	}
	if len(base) < 3 {
		base = "user"
	}
	return base
}
