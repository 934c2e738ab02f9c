package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shinedeck/shinedeck-api/internal/api"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"
const UserEmailKey contextKey = "userEmail"
const AccessTokenKey contextKey = "accessToken"

// Authenticate is middleware that resolves the request credential to a
// verified identity and stores it in the request context. It fails closed:
// no credential or a failed exchange short-circuits with a 401 envelope.
func Authenticate(logger *slog.Logger, resolver *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			token, identity, err := resolver.GetUserFromRequest(r)
			if err != nil {
				l.WarnContext(ctx, "Credential resolution failed", slog.Any("error", err))
				message := "Invalid or expired token"
				if errors.Is(err, errNoCredentials) {
					message = "Authorization required"
				}
				api.ErrorResponse(w, r, api.CodeUnauthorized, message, nil)
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, identity.ID)
			ctx = context.WithValue(ctx, UserEmailKey, identity.Email)
			ctx = context.WithValue(ctx, AccessTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions to get identity values from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

func GetAccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(AccessTokenKey).(string)
	return token, ok
}
