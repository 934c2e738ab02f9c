package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"golang.org/x/crypto/bcrypt"

	"github.com/shinedeck/shinedeck-api/config"
	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

// OAuthHandler implements social sign-in for the customer portal. The
// provider identity is mapped onto a first-party user row so downstream
// auth works identically for both login paths.
type OAuthHandler struct {
	authService AuthService
	repo        AuthRepo
	cfg         *config.Config
	logger      *slog.Logger
}

func NewOAuthHandler(authService AuthService, repo AuthRepo, cfg *config.Config, logger *slog.Logger) *OAuthHandler {
	if cfg.OAuth.GoogleKey != "" {
		goth.UseProviders(
			google.New(cfg.OAuth.GoogleKey, cfg.OAuth.GoogleSecret, cfg.OAuth.CallbackURL, "email", "profile"),
		)
	}
	return &OAuthHandler{
		authService: authService,
		repo:        repo,
		cfg:         cfg,
		logger:      logger,
	}
}

// Begin redirects to the provider's consent screen.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	r = withProvider(r)
	gothic.BeginAuthHandler(w, r)
}

// Callback completes the provider exchange, provisions a user row on first
// sign-in and issues first-party tokens.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r = withProvider(r)

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "OAuth exchange failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Invalid or expired token", nil)
		return
	}

	user, err := h.repo.GetUserByEmail(ctx, gothUser.Email)
	if err != nil {
		// First sign-in: provision a credential row with an unguessable
		// password so the account stays OAuth-only until reset.
		placeholder, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			api.HandleError(w, r, fmt.Errorf("provision oauth user: %w", hashErr))
			return
		}
		userID, regErr := h.repo.Register(ctx, gothUser.Name, gothUser.Email, string(placeholder))
		if regErr != nil {
			api.HandleError(w, r, regErr)
			return
		}
		user = &types.UserAuth{ID: userID, FullName: gothUser.Name, Email: gothUser.Email}
	}

	accessToken, refreshToken, err := h.authService.IssueTokens(ctx, user.ID, user.Email)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.Auth.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Mode == "production",
	})
	api.SuccessResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil)
}

// withProvider makes the chi route param visible to gothic.
func withProvider(r *http.Request) *http.Request {
	provider := chi.URLParam(r, "provider")
	if provider == "" {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))
}
