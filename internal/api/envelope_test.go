package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSuccessResponse_Envelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	SuccessResponse(rr, req, http.StatusOK, map[string]string{"name": "Ada"}, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Ada", data["name"])

	meta := body["meta"].(map[string]interface{})
	ts, ok := meta["timestamp"].(string)
	require.True(t, ok, "meta.timestamp must be present")
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestSuccessResponse_FreshTimestampPerCall(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	first := httptest.NewRecorder()
	SuccessResponse(first, req, http.StatusOK, nil, nil)

	time.Sleep(5 * time.Millisecond)

	second := httptest.NewRecorder()
	SuccessResponse(second, req, http.StatusOK, nil, nil)

	ts1 := decodeBody(t, first)["meta"].(map[string]interface{})["timestamp"].(string)
	ts2 := decodeBody(t, second)["meta"].(map[string]interface{})["timestamp"].(string)
	assert.NotEqual(t, ts1, ts2)
}

func TestSuccessResponse_ExtraMetaMerged(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	SuccessResponse(rr, req, http.StatusOK, []string{}, map[string]interface{}{
		"pagination": map[string]interface{}{"page": 2, "page_size": 20, "total": 41},
	})

	meta := decodeBody(t, rr)["meta"].(map[string]interface{})
	pagination, ok := meta["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(41), pagination["total"])
	assert.Contains(t, meta, "timestamp")
}

func TestPaginatedResponse_FlatMeta(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	PaginatedResponse(rr, req, []string{"a", "b"}, 3, 57)

	assert.Equal(t, http.StatusOK, rr.Code)
	meta := decodeBody(t, rr)["meta"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["page"])
	assert.Equal(t, float64(57), meta["total"])
	_, nested := meta["pagination"]
	assert.False(t, nested, "legacy list envelope keeps page/total flat under meta")
}

func TestErrorResponse_StatusFromCode(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeAdminOnly, http.StatusForbidden},
		{CodeRecordNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeServiceDegraded, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			ErrorResponse(rr, req, tc.code, "boom", nil)

			assert.Equal(t, tc.status, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, false, body["success"])
			errBody := body["error"].(map[string]interface{})
			assert.Equal(t, tc.code, errBody["code"])
			assert.Equal(t, "boom", errBody["message"])
			_, hasDetails := errBody["details"]
			assert.False(t, hasDetails, "details omitted when nil")
		})
	}
}

func TestErrorResponse_Details(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", nil)

	ErrorResponse(rr, req, CodeMissingField, "Missing required field", map[string]string{"field": "email"})

	errBody := decodeBody(t, rr)["error"].(map[string]interface{})
	details := errBody["details"].(map[string]interface{})
	assert.Equal(t, "email", details["field"])
}

func TestStatusForCode_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusForCode("NO_SUCH_CODE"))
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/test", nil)

	WriteJSONResponse(rr, req, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}
