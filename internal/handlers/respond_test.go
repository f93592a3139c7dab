package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func testContext(method, target string, headers map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c, w
}

func TestBackLocation(t *testing.T) {
	cases := []struct {
		referer, want string
	}{
		{"", "/jobs"},
		{"http://example.com/dashboard", "/dashboard"},
		{"http://example.com/jobs?page=2", "/jobs?page=2"},
		{"/resumes", "/resumes"},
		{"https://attacker.test/x", "/jobs"},
		{"http://example.com", "/jobs"},
		{"%zz", "/jobs"},
	}
	for _, tc := range cases {
		c, _ := testContext(http.MethodGet, "/jobs/1", map[string]string{"Referer": tc.referer})
		assert.Equal(t, tc.want, backLocation(c), "referer %q", tc.referer)
	}
}

func TestIDParam(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false, "1.5": false} {
		c, _ := testContext(http.MethodGet, "/", nil)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := idParam(c)
		assert.Equal(t, want, ok, raw)
	}
}

func TestFailMapsErrors(t *testing.T) {
	c, w := testContext(http.MethodGet, "/", nil)
	fail(c, errors.New("boom"), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom", "internal detail is not leaked")

	c, w = testContext(http.MethodGet, "/", nil)
	fail(c, apperrors.ValidationError(map[string]string{"title": "can't be blank"}), gin.H{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"can't be blank"`)

	c, w = testContext(http.MethodGet, "/", map[string]string{"Accept": "text/html"})
	fail(c, apperrors.ErrNotAuthorized, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/jobs", w.Header().Get("Location"))
}

func TestSuccessJSON(t *testing.T) {
	c, w := testContext(http.MethodPost, "/jobs", map[string]string{"Accept": "application/json"})
	success(c, http.StatusCreated, "Job was successfully created.", "/jobs/1", gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"Job was successfully created.","redirect_to":"/jobs/1","data":{"id":1}}`, w.Body.String())
}
