package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/middleware"
	"github.com/justsurfingit/jobtracker/internal/services"
)

type ProfileHandler struct {
	Users *services.UserService
}

func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{Users: users}
}

// Edit shows the signed-in user.
func (h *ProfileHandler) Edit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		fail(c, apperrors.ErrUnauthenticated, nil)
		return
	}
	render(c, gin.H{"data": user})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var params dtos.ProfileParams
	if err := c.ShouldBind(&params); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}

	user, err := h.Users.UpdateProfile(c.Request.Context(), middleware.Principal(c), params)
	if err != nil {
		fail(c, err, nil)
		return
	}
	success(c, http.StatusOK, "Profile updated successfully.", "/profile/edit", user)
}
