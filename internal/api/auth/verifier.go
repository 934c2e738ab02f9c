package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/shinedeck/shinedeck-api/config"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

// Identity is the verified result of a credential exchange: a stable user
// identifier plus optional email. Produced once per request, never cached
// across requests.
type Identity struct {
	ID    string
	Email string
}

// Verifier exchanges a bearer token for a verified identity. Implementations
// must treat every failure mode (network error, bad signature, expired
// token, unknown user) identically; the resolver does not distinguish them.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// HS256Verifier validates first-party access tokens signed with the shared
// HMAC secret.
type HS256Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

func NewHS256Verifier(jwtCfg config.JWTConfig) (*HS256Verifier, error) {
	if jwtCfg.SecretKey == "" {
		return nil, fmt.Errorf("JWT secret key is not configured")
	}
	return &HS256Verifier{
		secret:   []byte(jwtCfg.SecretKey),
		issuer:   jwtCfg.Issuer,
		audience: jwtCfg.Audience,
	}, nil
}

func (v *HS256Verifier) Verify(_ context.Context, tokenString string) (*Identity, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token marked invalid")
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return nil, fmt.Errorf("token issuer mismatch")
	}
	if v.audience != "" && !verifyAudience(claims.Audience, v.audience) {
		return nil, fmt.Errorf("token audience mismatch")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}
	return &Identity{ID: userID, Email: claims.Email}, nil
}

func verifyAudience(claimsAudience jwt.ClaimStrings, expected string) bool {
	for _, aud := range claimsAudience {
		if aud == expected {
			return true
		}
	}
	return false
}

// OIDCVerifier validates tokens against the hosted identity provider's
// JWKS, discovered from the issuer URL or a fixed JWKS endpoint.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, authCfg config.AuthConfig) (*OIDCVerifier, error) {
	oc := &oidc.Config{ClientID: authCfg.OIDCAudience}
	if authCfg.JWKSURL != "" {
		keySet := oidc.NewRemoteKeySet(ctx, authCfg.JWKSURL)
		return &OIDCVerifier{verifier: oidc.NewVerifier(authCfg.OIDCIssuer, keySet, oc)}, nil
	}
	provider, err := oidc.NewProvider(ctx, authCfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(oc)}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if idToken.Subject == "" {
		return nil, fmt.Errorf("token carries no subject")
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	identity := &Identity{ID: idToken.Subject}
	if email, ok := raw["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
