package dto

import "github.com/placereviews/auth-api/internal/domain"

// SignupRequest represents a signup request
type SignupRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=254,email"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
	Username string `json:"username" validate:"required,min=3,max=20"`
}

// SigninRequest represents a signin request
type SigninRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=254,email"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
}

// EmailRequest carries the target account of a send-code call
type EmailRequest struct {
	Email string `json:"email" validate:"required,min=5,max=254,email"`
}

// VerifyCodeRequest represents a one-time code check
type VerifyCodeRequest struct {
	Email        string `json:"email" validate:"required,min=5,max=254,email"`
	ProvidedCode string `json:"providedCode" validate:"required,len=6,numeric"`
}

// ChangePasswordRequest represents a password rotation by a signed-in caller
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72,password"`
}

// ResetPasswordRequest consumes a forgot-password code
type ResetPasswordRequest struct {
	Email        string `json:"email" validate:"required,min=5,max=254,email"`
	ProvidedCode string `json:"providedCode" validate:"required,len=6,numeric"`
	NewPassword  string `json:"newPassword" validate:"required,min=8,max=72,password"`
}

// GoogleSigninRequest carries an OAuth authorization code
type GoogleSigninRequest struct {
	Code string `json:"code" validate:"required"`
}

// Response is the envelope of every auth endpoint
type Response struct {
	Success              bool            `json:"success"`
	Message              string          `json:"message,omitempty"`
	Token                string          `json:"token,omitempty"`
	RequiresVerification bool            `json:"requiresVerification,omitempty"`
	Account              *domain.Account `json:"account,omitempty"`
}
