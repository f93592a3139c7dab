package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/middleware"
	"github.com/justsurfingit/jobtracker/internal/services"
)

// multipart framing allowance on top of the file size limit
const uploadOverhead = 1 << 20

type ResumeHandler struct {
	ResumeService *services.ResumeService
}

func NewResumeHandler(r *services.ResumeService) *ResumeHandler {
	return &ResumeHandler{ResumeService: r}
}

func (h *ResumeHandler) Index(c *gin.Context) {
	resumes, err := h.ResumeService.List(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		fail(c, err, nil)
		return
	}
	render(c, gin.H{"data": resumes})
}

func (h *ResumeHandler) New(c *gin.Context) {
	render(c, gin.H{"data": gin.H{}, "accepted_extensions": []string{".pdf", ".docx"}})
}

// Create accepts a multipart "file". The response carries the resume with
// extraction_status "pending"; poll Show for the text.
func (h *ResumeHandler) Create(c *gin.Context) {
	if limit := h.ResumeService.MaxSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadOverhead)
	}

	var upload *services.Upload
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			fail(c, apperrors.BadRequest("Unreadable upload"), nil)
			return
		}
		defer f.Close()
		upload = &services.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// a resume without a file is allowed; nothing gets extracted
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, apperrors.ErrFileTooLarge, nil)
			return
		}
		fail(c, apperrors.BadRequest("Invalid upload: "+err.Error()), nil)
		return
	}

	resume, err := h.ResumeService.Create(c.Request.Context(), middleware.Principal(c), upload)
	if err != nil {
		fail(c, err, nil)
		return
	}
	success(c, http.StatusCreated, "Resume was successfully uploaded.", fmt.Sprintf("/resumes/%d", resume.ID), resume)
}

func (h *ResumeHandler) Show(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		deny(c)
		return
	}
	resume, err := h.ResumeService.Get(c.Request.Context(), middleware.Principal(c), id)
	if err != nil {
		fail(c, err, nil)
		return
	}
	render(c, gin.H{"data": resume})
}
