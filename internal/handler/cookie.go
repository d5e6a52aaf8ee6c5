package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placereviews/auth-api/internal/service"
)

const (
	sessionCookieName = "Authorization"
	bearerPrefix      = "Bearer "
)

// setSessionCookie writes Authorization=Bearer <token>. http.SetCookie would
// quote a value containing a space, so the prefix goes in after serializing.
func (h *AuthHandler) setSessionCookie(c *gin.Context, session *service.Session) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  time.Now().Add(session.ExpiresIn),
		MaxAge:   int(session.ExpiresIn.Seconds()),
		HttpOnly: h.secureCookies,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	line, ok := strings.CutPrefix(cookie.String(), sessionCookieName+"=")
	if !ok {
		return
	}
	c.Writer.Header().Add("Set-Cookie", sessionCookieName+"="+bearerPrefix+line)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: h.secureCookies,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
