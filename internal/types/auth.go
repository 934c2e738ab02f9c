package types

import "github.com/golang-jwt/jwt/v5"

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@glossgarage.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required" example:"Dana Ortiz"`
	Email    string `json:"email" binding:"required,email" example:"dana@glossgarage.com"`
	Password string `json:"password" binding:"required,min=8" example:"Str0ngP@ss!"`
}

// RefreshTokenRequest carries the refresh token when it is not supplied
// via the HttpOnly cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is returned after login or refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJI..."`
	RefreshToken string `json:"refresh_token" example:"4f1trt8s..."`
}

// LogoutRequest invalidates the supplied refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Claims represents the custom claims included in first-party access tokens.
type Claims struct {
	UserID               string `json:"uid"`
	Email                string `json:"eml"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, Issuer, Audience, Subject
}

// UserAuth is the credential row backing first-party login.
type UserAuth struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"-"`
}
