package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/dto"
	"github.com/placereviews/auth-api/internal/service"
)

const claimsKey = "claims"

// AuthMiddleware validates the session token and adds the caller to the context.
// The token is read from the Authorization header, or from the session cookie
// when the header is absent.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credentials := c.GetHeader("Authorization")
		if credentials == "" {
			if cookie, err := c.Request.Cookie(sessionCookieName); err == nil {
				credentials = cookie.Value
			}
		}
		if credentials == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		token, ok := strings.CutPrefix(credentials, bearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, "Invalid authorization format")
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("account_id", claims.AccountID)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// sessionClaims returns the caller set by AuthMiddleware, or nil
func sessionClaims(c *gin.Context) *domain.SessionClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*domain.SessionClaims)
	return claims
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Response{
		Success: false,
		Message: message,
	})
}
