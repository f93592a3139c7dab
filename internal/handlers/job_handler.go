package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/middleware"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/services"
	"github.com/justsurfingit/jobtracker/internal/validator"
)

type JobHandler struct {
	JobService *services.JobService
	// nil when no LLM is configured
	LLMService *services.LLMService
	validator  *validator.Validator
}

func NewJobHandler(j *services.JobService, llm *services.LLMService) *JobHandler {
	return &JobHandler{JobService: j, LLMService: llm, validator: validator.New()}
}

func jobPath(id uint) string { return fmt.Sprintf("/jobs/%d", id) }

// Index is GET /jobs and GET /.
func (h *JobHandler) Index(c *gin.Context) {
	jobs, err := h.JobService.List(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		fail(c, err, nil)
		return
	}
	render(c, gin.H{"data": jobs})
}

// New returns a blank job and the allowed statuses.
func (h *JobHandler) New(c *gin.Context) {
	render(c, gin.H{
		"data":     models.Job{Status: models.StatusApplied},
		"statuses": models.JobStatuses,
	})
}

func (h *JobHandler) Create(c *gin.Context) {
	var params dtos.JobParams
	if err := c.ShouldBind(&params); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}

	job, err := h.JobService.Create(c.Request.Context(), middleware.Principal(c), params)
	if err != nil {
		fail(c, err, job)
		return
	}
	success(c, http.StatusCreated, "Job was successfully created.", jobPath(job.ID), job)
}

func (h *JobHandler) Show(c *gin.Context) {
	h.load(c, policy.ActionView)
}

// Edit returns the job with the allowed statuses, for the edit form.
func (h *JobHandler) Edit(c *gin.Context) {
	h.load(c, policy.ActionUpdate)
}

func (h *JobHandler) load(c *gin.Context, action policy.Action) {
	id, ok := idParam(c)
	if !ok {
		deny(c)
		return
	}
	job, err := h.JobService.Get(c.Request.Context(), middleware.Principal(c), id, action)
	if err != nil {
		fail(c, err, nil)
		return
	}
	payload := gin.H{"data": job}
	if action == policy.ActionUpdate {
		payload["statuses"] = models.JobStatuses
	}
	render(c, payload)
}

// Update handles PATCH and PUT. Only fields present in the body change.
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		deny(c)
		return
	}
	var params dtos.JobParams
	if err := c.ShouldBind(&params); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}

	job, err := h.JobService.Update(c.Request.Context(), middleware.Principal(c), id, params)
	if err != nil {
		fail(c, err, job)
		return
	}
	success(c, http.StatusOK, "Job was successfully updated.", jobPath(job.ID), job)
}

func (h *JobHandler) Destroy(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		deny(c)
		return
	}
	if err := h.JobService.Destroy(c.Request.Context(), middleware.Principal(c), id); err != nil {
		fail(c, err, nil)
		return
	}
	success(c, http.StatusOK, "Job was successfully destroyed.", "/jobs", nil)
}

// ParseJob is POST /jobs/extract: an LLM reads a pasted posting and returns
// a draft job. Nothing is saved.
func (h *JobHandler) ParseJob(c *gin.Context) {
	if h.LLMService == nil {
		fail(c, apperrors.ErrLLMUnavailable, nil)
		return
	}

	var req dtos.JobExtractionRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, apperrors.BadRequest("Invalid request body: "+err.Error()), nil)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		var verr *validator.ValidationError
		if apperrors.As(err, &verr) {
			fail(c, apperrors.ValidationError(verr.Errors), req)
			return
		}
		fail(c, err, nil)
		return
	}

	draft, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		fail(c, apperrors.Wrap(err, apperrors.CodeUnavailable, "AI Extraction failed", http.StatusBadGateway), nil)
		return
	}
	draft.URL = req.URL
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft})
}
