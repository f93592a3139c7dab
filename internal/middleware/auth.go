package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/services"
)

const (
	principalKey   = "principal"
	currentUserKey = "currentUser"
)

// Authenticate loads the user behind the session cookie or Bearer token.
// Requests without a valid token continue anonymously.
func Authenticate(tokens *auth.TokenService, users *services.UserService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c, cookieName)
		if raw == "" {
			c.Next()
			return
		}

		userID, err := tokens.Parse(raw)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "rejected session token", "error", err)
			c.Next()
			return
		}
		user, err := users.Get(c.Request.Context(), userID)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "session user not found", "user_id", userID)
			c.Next()
			return
		}

		c.Set(currentUserKey, user)
		c.Set(principalKey, &policy.Principal{UserID: user.ID, Admin: user.Admin})
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// RequireAuth stops anonymous requests: 401 JSON, or a redirect to /login
// for browsers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) != nil {
			c.Next()
			return
		}
		if WantsHTML(c) {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		appErr := apperrors.ErrUnauthenticated
		c.AbortWithStatusJSON(appErr.HTTPCode, gin.H{"error": appErr.Message, "code": appErr.Code})
	}
}

// Principal returns the acting user, or nil for anonymous requests.
func Principal(c *gin.Context) *policy.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*policy.Principal)
	return p
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// WantsHTML reports whether the client asked for an HTML page rather than
// JSON.
func WantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
