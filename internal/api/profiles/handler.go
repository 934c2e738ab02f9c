package profiles

import (
	"log/slog"
	"net/http"

	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetMe(w http.ResponseWriter, r *http.Request)
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

// GetMe godoc
// @Summary      Current Profile
// @Description  Returns the tenant/role profile bound to the authenticated identity.
// @Tags         Profiles
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} types.Profile "Profile"
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Failure      404 {object} map[string]interface{} "No Profile"
// @Router       /me [get]
func (h *HandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetMe"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Authentication required", nil)
		return
	}

	profile, err := h.service.GetCurrentProfile(ctx, userID)
	if err != nil {
		l.WarnContext(ctx, "Profile lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, profile, nil)
}
