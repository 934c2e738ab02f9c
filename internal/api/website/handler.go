package website

import (
	"log/slog"
	"net/http"

	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userID == "" {
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Authentication required", nil)
		return "", false
	}
	return userID, true
}

// GetSettings godoc
// @Summary      Website Settings
// @Description  Returns the tenant's public booking page configuration.
// @Tags         Website
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.WebsiteSettings "Settings"
// @Router       /website/settings [get]
func (h *HandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(ctx, userID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary      Update Website Settings
// @Description  Updates the public booking page configuration. Admin only.
// @Tags         Website
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.UpdateWebsiteSettingsParams true "Fields to update"
// @Success      200 {object} types.WebsiteSettings "Updated"
// @Failure      403 {object} map[string]interface{} "Admin Only"
// @Router       /website/settings [patch]
func (h *HandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateSettings"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.UpdateWebsiteSettingsParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	settings, err := h.service.UpdateSettings(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, settings, nil)
}
