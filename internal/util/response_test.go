package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handle(err error) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleError(c, err)

	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("title", "is required"), http.StatusBadRequest},
		{"invalid input", fmt.Errorf("%w: expected 3 answers", ErrInvalidInput), http.StatusBadRequest},
		{"unauthorized", ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"not public", ErrNotPublic, http.StatusNotFound},
		{"conflict", ErrAlreadyFinalized, http.StatusConflict},
		{"upstream", fmt.Errorf("%w: timeout", ErrGenerationFailed), http.StatusBadGateway},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := handle(tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestNotPublicIsIndistinguishableFromNotFound(t *testing.T) {
	_, missing := handle(ErrNotFound)
	_, private := handle(ErrNotPublic)
	assert.Equal(t, missing, private)
}

func TestHandleErrorValidationFields(t *testing.T) {
	vErr := NewValidationError("questions[0].answer", "must be one of the options")
	vErr.Add("title", "is required")

	w, _ := handle(vErr)
	var body struct {
		Data struct {
			Fields map[string]string `json:"fields"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Data.Fields["title"])
	assert.Len(t, body.Data.Fields, 2)
}

func TestHandleErrorDoesNotLeakInternals(t *testing.T) {
	_, resp := handle(errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.Equal(t, "Internal server error", resp.Message)

	_, resp = handle(fmt.Errorf("%w: api key invalid", ErrGenerationFailed))
	assert.Equal(t, "upstream provider error: quiz generation failed", resp.Message)
}
