package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger

	// secureCookies sets HttpOnly and Secure on the session cookie.
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Status codes are part of the public contract and differ per endpoint.
var (
	signupStatus = statusTable{
		service.KindValidation: http.StatusUnauthorized,
		service.KindConflict:   http.StatusUnauthorized,
	}
	signinStatus = statusTable{
		service.KindValidation: http.StatusUnauthorized,
		service.KindNotFound:   http.StatusUnauthorized,
		service.KindAuth:       http.StatusUnauthorized,
		service.KindUpstream:   http.StatusBadRequest,
	}
	sendCodeStatus = statusTable{
		service.KindValidation: http.StatusBadRequest,
		service.KindNotFound:   http.StatusNotFound,
		service.KindState:      http.StatusBadRequest,
		service.KindUpstream:   http.StatusBadRequest,
	}
	verifyCodeStatus = statusTable{
		service.KindValidation: http.StatusUnauthorized,
		service.KindNotFound:   http.StatusUnauthorized,
		service.KindState:      http.StatusBadRequest,
	}
	changePasswordStatus = statusTable{
		service.KindValidation: http.StatusUnauthorized,
		service.KindAuth:       http.StatusUnauthorized,
		service.KindNotFound:   http.StatusUnauthorized,
		service.KindState:      http.StatusBadRequest,
	}
	validateForgotStatus = statusTable{
		service.KindValidation: http.StatusBadRequest,
		service.KindNotFound:   http.StatusNotFound,
		service.KindState:      http.StatusBadRequest,
	}
	googleStatus = statusTable{
		service.KindValidation: http.StatusBadRequest,
		service.KindAuth:       http.StatusUnauthorized,
		service.KindConflict:   http.StatusConflict,
		service.KindNotFound:   http.StatusNotFound,
	}
	meStatus = statusTable{
		service.KindNotFound: http.StatusNotFound,
	}
)

// Signup handles account registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Signup request"
// @Success 201 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.bind(c, &req, signupStatus) {
		return
	}

	account, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, signupStatus)
		return
	}

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "Account created",
		Account: account,
	})
}

// Signin handles password sign-in
// @Summary Sign in with email and password
// @Description Unverified accounts receive a new verification code and a 403
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SigninRequest true "Signin request"
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 403 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if !h.bind(c, &req, signinStatus) {
		return
	}

	result, err := h.authService.Signin(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, signinStatus)
		return
	}

	if result.RequiresVerification {
		c.JSON(http.StatusForbidden, dto.Response{
			Success:              false,
			Message:              "Please verify your account, a verification code has been sent to your email",
			RequiresVerification: true,
		})
		return
	}

	h.setSessionCookie(c, result.Session)
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "You are logged in",
		Token:   result.Session.Token,
	})
}

// Signout clears the session cookie. The token itself stays valid until it expires.
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// SendVerificationCode handles (re)issuing the verification code
// @Summary Send verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Account email"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/send-verification-code [patch]
func (h *AuthHandler) SendVerificationCode(c *gin.Context) {
	var req dto.EmailRequest
	if !h.bind(c, &req, sendCodeStatus) {
		return
	}

	if err := h.authService.SendVerificationCode(c.Request.Context(), &req); err != nil {
		h.respondError(c, err, sendCodeStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Code sent",
	})
}

// VerifyVerificationCode handles account verification
// @Summary Verify account with a one-time code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyCodeRequest true "Email and code"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/verify-verification-code [patch]
func (h *AuthHandler) VerifyVerificationCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if !h.bind(c, &req, verifyCodeStatus) {
		return
	}

	session, err := h.authService.VerifyVerificationCode(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, verifyCodeStatus)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Your account has been verified",
		Token:   session.Token,
	})
}

// ChangePassword handles password rotation for the signed-in account
// @Summary Change password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/change-password [patch]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !h.bind(c, &req, changePasswordStatus) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), sessionClaims(c), &req); err != nil {
		h.respondError(c, err, changePasswordStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Password updated successfully",
	})
}

// SendForgotPasswordCode handles issuing a password reset code
// @Summary Send password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.EmailRequest true "Account email"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/send-forgot-password-code [patch]
func (h *AuthHandler) SendForgotPasswordCode(c *gin.Context) {
	var req dto.EmailRequest
	if !h.bind(c, &req, sendCodeStatus) {
		return
	}

	if err := h.authService.SendForgotPasswordCode(c.Request.Context(), &req); err != nil {
		h.respondError(c, err, sendCodeStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Code sent",
	})
}

// ValidateForgotPasswordCode checks a reset code without consuming it
// @Summary Validate password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyCodeRequest true "Email and code"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/validate-forgot-password-code [post]
func (h *AuthHandler) ValidateForgotPasswordCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if !h.bind(c, &req, validateForgotStatus) {
		return
	}

	if err := h.authService.ValidateForgotPasswordCode(c.Request.Context(), &req); err != nil {
		h.respondError(c, err, validateForgotStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Code is valid",
	})
}

// VerifyForgotPasswordCode consumes a reset code and stores the new password
// @Summary Reset password with a one-time code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/verify-forgot-password-code [patch]
func (h *AuthHandler) VerifyForgotPasswordCode(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.bind(c, &req, verifyCodeStatus) {
		return
	}

	if err := h.authService.VerifyForgotPasswordCode(c.Request.Context(), &req); err != nil {
		h.respondError(c, err, verifyCodeStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Password updated successfully",
	})
}

// SigninWithGoogle handles federated sign-in
// @Summary Sign in with a Google authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleSigninRequest true "Authorization code"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/google [post]
func (h *AuthHandler) SigninWithGoogle(c *gin.Context) {
	var req dto.GoogleSigninRequest
	if !h.bind(c, &req, googleStatus) {
		return
	}

	session, err := h.authService.SigninWithGoogle(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, googleStatus)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "You are logged in",
		Token:   session.Token,
	})
}

// GetMe handles getting the current account
// @Summary Get current account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 500 {object} dto.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims := sessionClaims(c)
	if claims == nil {
		abortUnauthorized(c, "Authentication required")
		return
	}

	account, err := h.authService.GetAccount(c.Request.Context(), claims.AccountID)
	if err != nil {
		h.respondError(c, err, meStatus)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Account: account,
	})
}
