package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/middleware"
	"github.com/justsurfingit/jobtracker/internal/services"
)

type DashboardHandler struct {
	DashboardService *services.DashboardService
}

func NewDashboardHandler(d *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{DashboardService: d}
}

func (h *DashboardHandler) Show(c *gin.Context) {
	summary, err := h.DashboardService.Summary(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		fail(c, err, nil)
		return
	}
	render(c, gin.H{"data": summary})
}
