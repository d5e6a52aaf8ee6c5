package service

import (
	"context"

	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*domain.Account, error)
	Signin(ctx context.Context, req *dto.SigninRequest) (*SigninResult, error)
	SendVerificationCode(ctx context.Context, req *dto.EmailRequest) error
	VerifyVerificationCode(ctx context.Context, req *dto.VerifyCodeRequest) (*Session, error)
	ChangePassword(ctx context.Context, caller *domain.SessionClaims, req *dto.ChangePasswordRequest) error
	SendForgotPasswordCode(ctx context.Context, req *dto.EmailRequest) error
	ValidateForgotPasswordCode(ctx context.Context, req *dto.VerifyCodeRequest) error
	VerifyForgotPasswordCode(ctx context.Context, req *dto.ResetPasswordRequest) error
	SigninWithGoogle(ctx context.Context, req *dto.GoogleSigninRequest) (*Session, error)

	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error)
}

// FederatedProvider resolves an authorization code into an identity
type FederatedProvider interface {
	Exchange(ctx context.Context, code string) (*domain.FederatedIdentity, error)
}
