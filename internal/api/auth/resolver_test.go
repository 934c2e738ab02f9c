package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type countingVerifier struct {
	calls     int
	lastToken string
	identity  *Identity
	err       error
}

func (v *countingVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	v.calls++
	v.lastToken = token
	return v.identity, v.err
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "well formed", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "missing header", header: "", want: ""},
		{name: "bare token", header: "abc.def.ghi", want: ""},
		{name: "wrong scheme", header: "Basic abc", want: ""},
		{name: "lowercase scheme", header: "bearer abc", want: ""},
		{name: "too many parts", header: "Bearer abc def", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, BearerToken(req))
		})
	}
}

func TestCookieToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{name: "single cookie", cookie: "sd_access=tok123", want: "tok123"},
		{name: "among other cookies", cookie: "theme=dark; sd_access=tok123; lang=en", want: "tok123"},
		{name: "value with padding", cookie: "sd_access=tok==", want: "tok=="},
		{name: "absent", cookie: "theme=dark", want: ""},
		{name: "no header", cookie: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", tc.cookie)
			}
			assert.Equal(t, tc.want, CookieToken(req, "sd_access"))
		})
	}
}

func TestGetUserFromRequest_HeaderBeforeCookie(t *testing.T) {
	verifier := &countingVerifier{identity: &Identity{ID: "user-1", Email: "ada@example.com"}}
	resolver := NewResolver(verifier, "sd_access")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.Header.Set("Cookie", "sd_access=cookie-token")

	token, identity, err := resolver.GetUserFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "header-token", token)
	assert.Equal(t, "header-token", verifier.lastToken)
	assert.Equal(t, "user-1", identity.ID)
}

func TestGetUserFromRequest_CookieFallback(t *testing.T) {
	verifier := &countingVerifier{identity: &Identity{ID: "user-1"}}
	resolver := NewResolver(verifier, "sd_access")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "sd_access=cookie-token")

	token, identity, err := resolver.GetUserFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "cookie-token", token)
	assert.Equal(t, "user-1", identity.ID)
}

func TestGetUserFromRequest_NoCredential(t *testing.T) {
	verifier := &countingVerifier{identity: &Identity{ID: "user-1"}}
	resolver := NewResolver(verifier, "sd_access")

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, _, err := resolver.GetUserFromRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
	assert.Zero(t, verifier.calls, "verifier must not run without a credential")
}

func TestGetUserFromRequest_VerifierFailure(t *testing.T) {
	verifier := &countingVerifier{err: errors.New("signature mismatch")}
	resolver := NewResolver(verifier, "sd_access")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	_, _, err := resolver.GetUserFromRequest(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "Invalid or expired token")
	assert.Equal(t, 1, verifier.calls)
}
