package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantFields int
	}{
		{"not found", errors.NotFound("appointment", nil), http.StatusNotFound, "appointment not found", 0},
		{"conflict", errors.Conflict("slot taken", nil), http.StatusConflict, "slot taken", 0},
		{"validation", errors.Validation(errors.FieldError{Field: "date", Message: "is required"}), http.StatusBadRequest, "validation failed", 1},
		{"forbidden", errors.Forbidden("nope"), http.StatusForbidden, "nope", 0},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, "internal server error", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Len(t, resp.Errors, tt.wantFields)
		})
	}
}

func TestRespondWithSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondCreated(c, gin.H{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, map[string]interface{}{"id": "1"}, resp.Data)
}
