package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type detailExposureKey struct{}

// ErrorDetails is middleware that decides whether raw error text is
// attached to the error envelope's details field. Constructed once from
// config at startup; off in production so backend internals (driver
// errors, SQL) never reach API consumers. Logs keep the full chain.
func ErrorDetails(enabled bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), detailExposureKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detailsExposed(ctx context.Context) bool {
	enabled, ok := ctx.Value(detailExposureKey{}).(bool)
	return ok && enabled
}

// HandleError is the single translation point from service/repository
// errors to error envelopes. Handlers call it instead of mapping sentinel
// errors per call site.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := classify(err)

	var details interface{}
	if detailsExposed(r.Context()) {
		details = err.Error()
	}
	if code == CodeDatabaseError || code == CodeInternalError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("code", code),
			slog.Any("error", err),
		)
	}
	ErrorResponse(w, r, code, message, details)
}

func classify(err error) (code, message string) {
	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		return CodeUnauthorized, "Authentication required"
	case errors.Is(err, types.ErrAdminOnly):
		return CodeAdminOnly, "Admin access required"
	case errors.Is(err, types.ErrForbidden):
		return CodeForbidden, "You do not have access to this resource"
	case errors.Is(err, types.ErrNotFound):
		return CodeRecordNotFound, notFoundMessage(err)
	case errors.Is(err, types.ErrConflict):
		return CodeConflict, "Resource already exists"
	case errors.Is(err, types.ErrMissingField):
		return CodeMissingField, "Missing required field"
	case errors.Is(err, types.ErrValidation):
		return CodeInvalidInput, "Invalid input"
	case errors.Is(err, types.ErrDatabase):
		return CodeDatabaseError, "Database error"
	default:
		return CodeInternalError, "Internal server error"
	}
}

// notFoundMessage preserves curated not-found messages the frontend matches
// on ("No profile"), falling back to a generic one.
func notFoundMessage(err error) string {
	if errors.Is(err, types.ErrProfileNotFound) {
		return "No profile"
	}
	return "Record not found"
}
