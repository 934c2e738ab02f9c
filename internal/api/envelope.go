package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware" // For RequestID
)

// Error codes returned in the error envelope. The frontend switches on
// these, so the set is fixed; add codes, never rename them.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeMissingField    = "MISSING_REQUIRED_FIELD"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeAdminOnly       = "ADMIN_ONLY"
	CodeRecordNotFound  = "RECORD_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeServiceDegraded = "SERVICE_DEGRADED"
)

// codeStatus is the single code→status table. Historically each call site
// passed its own status; ErrorResponseWithStatus keeps that escape hatch for
// the legacy call sites that depend on it.
var codeStatus = map[string]int{
	CodeInvalidInput:    http.StatusBadRequest,
	CodeMissingField:    http.StatusBadRequest,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeAdminOnly:       http.StatusForbidden,
	CodeRecordNotFound:  http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeRateLimited:     http.StatusTooManyRequests,
	CodeDatabaseError:   http.StatusInternalServerError,
	CodeInternalError:   http.StatusInternalServerError,
	CodeServiceDegraded: http.StatusServiceUnavailable,
}

// StatusForCode returns the canonical HTTP status for an error code.
// Unknown codes map to 500.
func StatusForCode(code string) int {
	if s, ok := codeStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// newMeta builds the meta object with a timestamp computed now. Every
// response gets a fresh timestamp; never cache or reuse one.
func newMeta() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// SuccessResponse writes the canonical success envelope:
//
//	{ "success": true, "data": <payload>, "meta": { "timestamp": ..., ...extra } }
//
// extraMeta entries are merged under meta (e.g. a nested "pagination" object).
func SuccessResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}, extraMeta map[string]interface{}) {
	meta := newMeta()
	for k, v := range extraMeta {
		meta[k] = v
	}
	WriteJSONResponse(w, r, status, map[string]interface{}{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// PaginatedResponse writes the legacy list envelope with page/total flat
// under meta (not nested under meta.pagination). Existing consumers depend
// on this exact shape; do not fold it into SuccessResponse.
func PaginatedResponse(w http.ResponseWriter, r *http.Request, items interface{}, page, total int) {
	meta := newMeta()
	meta["page"] = page
	meta["total"] = total
	WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    items,
		"meta":    meta,
	})
}

// ErrorResponse writes the canonical error envelope, deriving the HTTP
// status from the code table.
func ErrorResponse(w http.ResponseWriter, r *http.Request, code, message string, details interface{}) {
	ErrorResponseWithStatus(w, r, code, message, details, StatusForCode(code))
}

// ErrorResponseWithStatus is ErrorResponse with a caller-supplied status,
// kept for call sites that predate the code→status table.
func ErrorResponseWithStatus(w http.ResponseWriter, r *http.Request, code, message string, details interface{}, status int) {
	errBody := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if details != nil {
		errBody["details"] = details
	}
	WriteJSONResponse(w, r, status, map[string]interface{}{
		"success": false,
		"error":   errBody,
		"meta":    newMeta(),
	})
}

// WriteJSONResponse encodes the data to JSON and writes the response header and body.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	// If data is nil and status indicates no content, just write header
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		reqID := middleware.GetReqID(r.Context())
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", reqID),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Set headers *before* writing status or body
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	if err != nil {
		// Client already received the status code; only log
		reqID := middleware.GetReqID(r.Context())
		slog.ErrorContext(r.Context(), "Failed to write response body",
			slog.Any("error", err),
			slog.String("request_id", reqID),
		)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
