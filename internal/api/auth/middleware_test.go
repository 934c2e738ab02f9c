package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAuthenticate(t *testing.T, verifier Verifier, mutate func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	resolver := NewResolver(verifier, "sd_access")

	reachedNext := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedNext = true
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	if mutate != nil {
		mutate(req)
	}
	Authenticate(logger, resolver)(next).ServeHTTP(rr, req)
	return rr, reachedNext
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"].(map[string]interface{})["message"].(string)
}

func TestAuthenticate_MissingCredential(t *testing.T) {
	verifier := &countingVerifier{identity: &Identity{ID: "user-1"}}

	rr, reachedNext := runAuthenticate(t, verifier, nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Authorization required", errorMessage(t, rr))
	assert.False(t, reachedNext)
	assert.Zero(t, verifier.calls)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	verifier := &countingVerifier{err: assert.AnError}

	rr, reachedNext := runAuthenticate(t, verifier, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bad-token")
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid or expired token", errorMessage(t, rr))
	assert.False(t, reachedNext)
	assert.Equal(t, 1, verifier.calls, "one verification, no second credential parse")
}

func TestAuthenticate_StoresIdentityInContext(t *testing.T) {
	verifier := &countingVerifier{identity: &Identity{ID: "user-1", Email: "ada@example.com"}}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	resolver := NewResolver(verifier, "sd_access")

	var gotID, gotEmail, gotToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotEmail, _ = GetUserEmailFromContext(r.Context())
		gotToken, _ = GetAccessTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	Authenticate(logger, resolver)(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", gotID)
	assert.Equal(t, "ada@example.com", gotEmail)
	assert.Equal(t, "good-token", gotToken)
}
