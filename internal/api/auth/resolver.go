package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

// errNoCredentials marks the absent-credential failure so the middleware
// can word its 401 without re-parsing the request.
var errNoCredentials = fmt.Errorf("no credentials supplied: %w", types.ErrUnauthenticated)

// Resolver turns an inbound request into a verified identity. The raw token
// is returned alongside the identity so callers that need a user-scoped
// store client can build one without re-extracting the credential.
type Resolver struct {
	verifier   Verifier
	cookieName string
}

func NewResolver(verifier Verifier, cookieName string) *Resolver {
	return &Resolver{verifier: verifier, cookieName: cookieName}
}

// BearerToken extracts the token from the Authorization header. The header
// must be exactly two space-separated parts with the first equal to
// "Bearer"; anything else yields "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return ""
	}
	return headerParts[1]
}

// CookieToken extracts the access token from the named cookie by manually
// splitting the Cookie header. Values containing "=" are rejoined so tokens
// with padding survive intact.
func CookieToken(r *http.Request, name string) string {
	header := r.Header.Get("Cookie")
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ";") {
		pieces := strings.Split(strings.TrimSpace(part), "=")
		if len(pieces) < 2 {
			continue
		}
		if pieces[0] == name {
			return strings.Join(pieces[1:], "=")
		}
	}
	return ""
}

// TokenFromRequest applies the extraction order: Authorization header first,
// access-token cookie second.
func (res *Resolver) TokenFromRequest(r *http.Request) string {
	if token := BearerToken(r); token != "" {
		return token
	}
	return CookieToken(r, res.cookieName)
}

// GetUserFromRequest resolves the request's credential to a verified
// identity. A missing credential fails immediately without touching the
// verifier; a failed exchange surfaces as the single "Invalid or expired
// token" condition regardless of cause.
func (res *Resolver) GetUserFromRequest(r *http.Request) (string, *Identity, error) {
	token := res.TokenFromRequest(r)
	if token == "" {
		return "", nil, errNoCredentials
	}

	identity, err := res.verifier.Verify(r.Context(), token)
	if err != nil || identity == nil {
		return "", nil, fmt.Errorf("Invalid or expired token: %w", types.ErrUnauthenticated)
	}
	return token, identity, nil
}
