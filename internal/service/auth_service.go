package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/mail"
	"github.com/placereviews/auth-api/internal/repository"
	"github.com/placereviews/auth-api/internal/utils"
	"go.uber.org/zap"
)

// AuthConfig carries the process-wide secrets and knobs of the auth core
type AuthConfig struct {
	// CodeSecret keys the HMAC fingerprints of one-time codes.
	CodeSecret string
	BCryptCost int

	// Federated is nil when federated sign-in is disabled.
	Federated FederatedProvider

	// Now defaults to time.Now.
	Now func() time.Time
}

// authService implements AuthService interface
type authService struct {
	accounts   repository.AccountRepository
	identities repository.IdentityRepository
	jwtManager *utils.JWTManager
	mailer     mail.Mailer
	federated  FederatedProvider
	logger     *zap.Logger
	metrics    *authMetrics

	codeSecret string
	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	accounts repository.AccountRepository,
	identities repository.IdentityRepository,
	jwtManager *utils.JWTManager,
	mailer mail.Mailer,
	logger *zap.Logger,
	cfg AuthConfig,
) AuthService {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = utils.DefaultBCryptCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &authService{
		accounts:   accounts,
		identities: identities,
		jwtManager: jwtManager,
		mailer:     mailer,
		federated:  cfg.Federated,
		logger:     logger,
		metrics:    newAuthMetrics(),
		codeSecret: cfg.CodeSecret,
		bcryptCost: cfg.BCryptCost,
		now:        cfg.Now,
	}
}

// Signup creates an unverified local account. No code is sent.
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*domain.Account, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	req.Username = utils.SanitizeUsername(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	if err := s.ensureUnique(ctx, req.Email, req.Username); err != nil {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	account := &domain.Account{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: &passwordHash,
		Verified:     false,
		AuthProvider: domain.AuthProviderLocal,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, newError(KindConflict, MsgEmailTaken)
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, newError(KindConflict, MsgUsernameTaken)
		}
		return nil, internalError("failed to create account", err)
	}

	s.metrics.signup(ctx)
	return account, nil
}

func (s *authService) ensureUnique(ctx context.Context, email, username string) error {
	_, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		return newError(KindConflict, MsgEmailTaken)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internalError("failed to check email", err)
	}

	_, err = s.accounts.GetByUsername(ctx, username)
	if err == nil {
		return newError(KindConflict, MsgUsernameTaken)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return internalError("failed to check username", err)
	}

	return nil
}

// Signin checks credentials. Unverified accounts get a fresh verification
// code instead of a session.
func (s *authService) Signin(ctx context.Context, req *dto.SigninRequest) (*SigninResult, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.signin(ctx, "not_found")
		return nil, err
	}

	if !account.HasPassword() || !utils.CheckPasswordHash(req.Password, *account.PasswordHash) {
		s.metrics.signin(ctx, "invalid_credentials")
		return nil, newError(KindAuth, MsgInvalidCredentials)
	}

	if !account.Verified {
		if err := s.issueCode(ctx, account, domain.CodePurposeVerification); err != nil {
			return nil, err
		}
		s.metrics.signin(ctx, "requires_verification")
		return &SigninResult{RequiresVerification: true}, nil
	}

	session, err := s.newSession(account)
	if err != nil {
		return nil, err
	}

	s.metrics.signin(ctx, "success")
	return &SigninResult{Session: session}, nil
}

// SendVerificationCode (re)issues the verification code of an unverified account
func (s *authService) SendVerificationCode(ctx context.Context, req *dto.EmailRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if account.Verified {
		return newError(KindState, MsgAlreadyVerified)
	}

	return s.issueCode(ctx, account, domain.CodePurposeVerification)
}

// VerifyVerificationCode consumes the verification code, activates the
// account and signs it in.
func (s *authService) VerifyVerificationCode(ctx context.Context, req *dto.VerifyCodeRequest) (*Session, error) {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	// A consumed code reads as missing, even once the account is verified.
	if err := s.checkCode(ctx, account, domain.CodePurposeVerification, req.ProvidedCode); err != nil {
		return nil, err
	}

	if account.Verified {
		return nil, newError(KindState, MsgAlreadyVerified)
	}

	if err := s.accounts.MarkVerified(ctx, account.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindState, MsgAlreadyVerified)
		}
		return nil, internalError("failed to verify account", err)
	}

	account.Verified = true
	account.VerificationCode = nil
	account.VerificationCodeIssuedAt = nil

	return s.newSession(account)
}

// ChangePassword rotates the password of a signed-in, verified caller
func (s *authService) ChangePassword(ctx context.Context, caller *domain.SessionClaims, req *dto.ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	if caller == nil || !caller.Verified {
		return newError(KindAuth, MsgNotVerified)
	}

	account, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindNotFound, MsgAccountNotFound)
		}
		return internalError("failed to get account", err)
	}

	if !account.HasPassword() || !utils.CheckPasswordHash(req.OldPassword, *account.PasswordHash) {
		return newError(KindAuth, MsgInvalidCredentials)
	}

	if utils.CheckPasswordHash(req.NewPassword, *account.PasswordHash) {
		return newError(KindState, MsgSamePassword)
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return internalError("failed to hash password", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return internalError("failed to update password", err)
	}

	return nil
}

// SendForgotPasswordCode issues a password reset code; verification state is irrelevant
func (s *authService) SendForgotPasswordCode(ctx context.Context, req *dto.EmailRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if !account.HasPassword() {
		return newError(KindState, MsgFederatedAccount)
	}

	return s.issueCode(ctx, account, domain.CodePurposePasswordReset)
}

// ValidateForgotPasswordCode checks the reset code without consuming it
func (s *authService) ValidateForgotPasswordCode(ctx context.Context, req *dto.VerifyCodeRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	return s.checkCode(ctx, account, domain.CodePurposePasswordReset, req.ProvidedCode)
}

// VerifyForgotPasswordCode consumes the reset code and stores the new password.
// The caller has to sign in afterwards.
func (s *authService) VerifyForgotPasswordCode(ctx context.Context, req *dto.ResetPasswordRequest) error {
	req.Email = utils.SanitizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if err := s.checkCode(ctx, account, domain.CodePurposePasswordReset, req.ProvidedCode); err != nil {
		return err
	}

	if account.HasPassword() && utils.CheckPasswordHash(req.NewPassword, *account.PasswordHash) {
		return newError(KindState, MsgSamePassword)
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return internalError("failed to hash password", err)
	}

	// A concurrent reset may have consumed the code since it was checked.
	if err := s.accounts.ResetPassword(ctx, account.ID, passwordHash, *account.ForgotPasswordCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(KindState, MsgNoPendingCode)
		}
		return internalError("failed to reset password", err)
	}

	return nil
}

// GetAccount returns the account behind a session
func (s *authService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, MsgAccountNotFound)
		}
		return nil, internalError("failed to get account", err)
	}
	return account, nil
}

// ValidateToken validates a session token
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.SessionClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Message: "Invalid or expired token", Err: err}
	}
	return claims, nil
}

func (s *authService) findByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(KindNotFound, MsgAccountNotFound)
		}
		return nil, internalError("failed to get account", err)
	}
	return account, nil
}

// issueCode mails a new code and stores its fingerprint only once the mail
// transport accepted the message. Concurrent calls for one account race;
// the last stored fingerprint wins.
func (s *authService) issueCode(ctx context.Context, account *domain.Account, purpose domain.CodePurpose) error {
	code, err := utils.GenerateCode()
	if err != nil {
		return internalError("failed to generate code", err)
	}

	err = s.mailer.SendCode(ctx, mail.CodeMessage{
		To:       account.Email,
		Username: account.Username,
		Purpose:  purpose,
		Code:     code,
		TTL:      utils.CodeTTL,
	})
	if err != nil {
		s.logger.Warn("Failed to send code",
			zap.String("account_id", account.ID),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		s.metrics.codeSent(ctx, string(purpose), "send_failed")
		return &Error{Kind: KindUpstream, Message: MsgCodeSendFailed, Err: err}
	}

	issuedAt := s.now().UTC()
	fingerprint := utils.FingerprintCode(code, s.codeSecret)
	if err := s.accounts.SetCode(ctx, account.ID, purpose, fingerprint, issuedAt); err != nil {
		s.metrics.codeSent(ctx, string(purpose), "store_failed")
		return internalError("failed to store code", err)
	}

	s.metrics.codeSent(ctx, string(purpose), "sent")
	return nil
}

func (s *authService) checkCode(ctx context.Context, account *domain.Account, purpose domain.CodePurpose, providedCode string) error {
	fingerprint, issuedAt := account.PendingCode(purpose)

	err := utils.CheckCode(fingerprint, issuedAt, providedCode, s.codeSecret, s.now())
	switch {
	case err == nil:
		s.metrics.codeVerified(ctx, string(purpose), "valid")
		return nil
	case errors.Is(err, utils.ErrCodeMissing):
		s.metrics.codeVerified(ctx, string(purpose), "missing")
		return newError(KindState, MsgNoPendingCode)
	case errors.Is(err, utils.ErrCodeExpired):
		s.metrics.codeVerified(ctx, string(purpose), "expired")
		return newError(KindState, MsgCodeExpired)
	case errors.Is(err, utils.ErrCodeMismatch):
		s.metrics.codeVerified(ctx, string(purpose), "mismatch")
		return newError(KindState, MsgInvalidCode)
	default:
		return internalError("failed to check code", fmt.Errorf("check %s code: %w", purpose, err))
	}
}
