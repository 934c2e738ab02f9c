package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

func handleErrorThrough(t *testing.T, mw func(http.Handler) http.Handler, err error) *httptest.ResponseRecorder {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleError(w, r, err)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if mw != nil {
		mw(handler).ServeHTTP(rr, req)
	} else {
		handler.ServeHTTP(rr, req)
	}
	return rr
}

func TestHandleError_Classification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", fmt.Errorf("customer x: %w", types.ErrNotFound), http.StatusNotFound, CodeRecordNotFound, "Record not found"},
		{"no profile", fmt.Errorf("profile: %w", types.ErrProfileNotFound), http.StatusNotFound, CodeRecordNotFound, "No profile"},
		{"forbidden", fmt.Errorf("tenant mismatch: %w", types.ErrForbidden), http.StatusForbidden, CodeForbidden, "You do not have access to this resource"},
		{"conflict", fmt.Errorf("email taken: %w", types.ErrConflict), http.StatusConflict, CodeConflict, "Resource already exists"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError, "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := handleErrorThrough(t, nil, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			body := decodeBody(t, rr)
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, tc.code, errBody["code"])
			assert.Equal(t, tc.message, errBody["message"])
		})
	}
}

func TestHandleError_DetailsFollowMiddlewareFlag(t *testing.T) {
	err := fmt.Errorf("pq: relation does not exist: %w", types.ErrDatabase)

	exposed := handleErrorThrough(t, ErrorDetails(true), err)
	errBody := decodeBody(t, exposed)["error"].(map[string]interface{})
	details, ok := errBody["details"].(string)
	require.True(t, ok, "development mode attaches raw detail")
	assert.Contains(t, details, "relation does not exist")

	hidden := handleErrorThrough(t, ErrorDetails(false), err)
	errBody = decodeBody(t, hidden)["error"].(map[string]interface{})
	_, ok = errBody["details"]
	assert.False(t, ok, "production mode never leaks raw detail")
}

func TestHandleError_NoMiddlewareFailsClosed(t *testing.T) {
	rr := handleErrorThrough(t, nil, fmt.Errorf("driver detail: %w", types.ErrDatabase))

	errBody := decodeBody(t, rr)["error"].(map[string]interface{})
	_, ok := errBody["details"]
	assert.False(t, ok)
}
