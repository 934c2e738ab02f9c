package auth

import (
	"log/slog"
	"net/http"

	"github.com/shinedeck/shinedeck-api/config"
	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	RefreshSession(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	InvalidateAllSessions(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	cfg         *config.Config
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, cfg *config.Config, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates a new login credential.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Registration Parameters"
// @Success      200 {object} map[string]interface{} "Registered"
// @Failure      400 {object} map[string]interface{} "Invalid Input"
// @Failure      409 {object} map[string]interface{} "Email Taken"
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		api.ErrorResponse(w, r, api.CodeMissingField, "full_name, email and password are required", nil)
		return
	}

	if err := h.authService.Register(ctx, req.FullName, req.Email, req.Password); err != nil {
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, map[string]string{"message": "Registration successful"}, nil)
}

// Login godoc
// @Summary      Login
// @Description  Verifies credentials and issues an access/refresh token pair. The access token is also set as an HttpOnly cookie.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Login Parameters"
// @Success      200 {object} types.TokenResponse "Tokens"
// @Failure      401 {object} map[string]interface{} "Invalid Credentials"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, api.CodeMissingField, "email and password are required", nil)
		return
	}

	accessToken, refreshToken, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.WarnContext(ctx, "Login failed", slog.String("email", req.Email))
		api.HandleError(w, r, err)
		return
	}

	h.setAccessCookie(w, accessToken)
	api.SuccessResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil)
}

// RefreshSession godoc
// @Summary      Refresh Session
// @Description  Rotates the refresh token and issues a new access token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RefreshTokenRequest true "Refresh Parameters"
// @Success      200 {object} types.TokenResponse "Tokens"
// @Failure      401 {object} map[string]interface{} "Invalid Token"
// @Router       /auth/refresh [post]
func (h *HandlerImpl) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}
	if req.RefreshToken == "" {
		api.ErrorResponse(w, r, api.CodeMissingField, "refresh_token is required", nil)
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	h.setAccessCookie(w, accessToken)
	api.SuccessResponse(w, r, http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil)
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the supplied refresh token and clears the access cookie.
// @Tags         Auth
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.LogoutRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	if err := h.authService.Logout(ctx, req.RefreshToken); err != nil {
		api.HandleError(w, r, err)
		return
	}

	h.clearAccessCookie(w)
	api.SuccessResponse(w, r, http.StatusOK, map[string]string{"message": "Logged out"}, nil)
}

// InvalidateAllSessions godoc
// @Summary      Invalidate All Sessions
// @Description  Revokes every refresh token for the authenticated user.
// @Tags         Auth
// @Security     BearerAuth
// @Router       /auth/invalidate-tokens [post]
func (h *HandlerImpl) InvalidateAllSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.authService.InvalidateAllSessions(ctx, userID); err != nil {
		api.HandleError(w, r, err)
		return
	}

	h.clearAccessCookie(w)
	api.SuccessResponse(w, r, http.StatusOK, map[string]string{"message": "All sessions invalidated"}, nil)
}

func (h *HandlerImpl) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.cfg.Auth.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Mode == "production",
	})
}

func (h *HandlerImpl) clearAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.Mode == "production",
	})
}
