package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/services"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
}

type AuthHandler struct {
	Users   *services.UserService
	Tokens  *auth.TokenService
	Session SessionConfig
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenService, session SessionConfig) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Session: session}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req)
	if err != nil {
		req.Password = ""
		fail(c, err, req)
		return
	}
	h.signIn(c, user, http.StatusCreated, "Welcome! You have signed up successfully.")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "failed login attempt", "email", req.Email)
		fail(c, err, nil)
		return
	}
	h.signIn(c, user, http.StatusOK, "Signed in successfully.")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Session.CookieName, "", -1, "/", "", h.Session.Secure, true)
	success(c, http.StatusOK, "Signed out successfully.", "/login", nil)
}

func (h *AuthHandler) signIn(c *gin.Context, user *models.User, status int, message string) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		fail(c, apperrors.InternalError(err), nil)
		return
	}
	ttl := h.Tokens.TTL()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Session.CookieName, token, int(ttl.Seconds()), "/", "", h.Session.Secure, true)

	success(c, status, message, "/jobs", dtos.AuthResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		User:      user,
	})
}
