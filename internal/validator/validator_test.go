package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string `json:"title" validate:"notblank"`
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"omitempty,oneof=applied interview"`
	Date   string `json:"applied_on" validate:"omitempty,datetime=2006-01-02"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(sample{Title: "   ", Email: "nope", Status: "hired", Date: "01/02/2025"})
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "can't be blank", verr.Errors["title"])
	assert.Equal(t, "is not a valid email", verr.Errors["email"])
	assert.Equal(t, "must be one of: applied, interview", verr.Errors["status"])
	assert.Equal(t, "must be a date formatted YYYY-MM-DD", verr.Errors["applied_on"])
	assert.Contains(t, verr.Error(), "title can't be blank")
}

func TestValidatePasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sample{Title: "Eng", Email: "a@b.co", Date: "2025-01-02"}))
}
