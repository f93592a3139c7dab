package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/middleware"
)

const (
	flashCookie     = "flash"
	defaultLanding  = "/jobs"
	flashMaxAgeSecs = 60
)

// render answers a read. A pending flash message is handed over once.
func render(c *gin.Context, payload gin.H) {
	if msg, err := c.Cookie(flashCookie); err == nil && msg != "" {
		payload["flash"] = msg
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	c.JSON(http.StatusOK, payload)
}

// success answers a write: JSON for API clients, a 303 redirect carrying the
// message for browsers.
func success(c *gin.Context, status int, message, redirectTo string, data any) {
	if middleware.WantsHTML(c) {
		setFlash(c, message)
		c.Redirect(http.StatusSeeOther, redirectTo)
		return
	}
	c.JSON(status, gin.H{"message": message, "redirect_to": redirectTo, "data": data})
}

// fail maps err to a response. rejected is echoed back on validation
// failures so the client can re-display the form.
func fail(c *gin.Context, err error, rejected any) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.InternalError(err)
	}

	switch {
	case apperrors.Is(appErr, apperrors.ErrNotAuthorized):
		deny(c)
	case apperrors.Is(appErr, apperrors.ErrUnauthenticated) && middleware.WantsHTML(c):
		c.Redirect(http.StatusSeeOther, "/login")
	case apperrors.Is(appErr, apperrors.ErrValidationFailed):
		c.JSON(appErr.HTTPCode, gin.H{"error": appErr.Message, "errors": appErr.Details, "data": rejected})
	default:
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.CtxWithError(c.Request.Context(), "request failed", err, "path", c.Request.URL.Path)
		}
		body := gin.H{"error": appErr.Message, "code": appErr.Code}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		c.JSON(appErr.HTTPCode, body)
	}
	c.Abort()
}

// deny never reveals whether the record exists.
func deny(c *gin.Context) {
	msg := apperrors.ErrNotAuthorized.Message
	back := backLocation(c)
	if middleware.WantsHTML(c) {
		setFlash(c, msg)
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	c.JSON(apperrors.ErrNotAuthorized.HTTPCode, gin.H{"error": msg, "redirect_to": back})
}

// backLocation is the same-host Referer path, else the jobs index.
func backLocation(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return defaultLanding
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) || u.Path == "" {
		return defaultLanding
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

func setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, msg, flashMaxAgeSecs, "/", "", false, true)
}

// idParam returns the :id path value. ok is false for anything that is not
// a positive integer.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
