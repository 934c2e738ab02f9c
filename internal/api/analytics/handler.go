package analytics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetDashboard(w http.ResponseWriter, r *http.Request)
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

// GetDashboard godoc
// @Summary      Analytics Dashboard
// @Description  Returns top customers by lifetime value, the quote-to-completion funnel and a revenue summary. Defaults to the last 30 days; override with ?from= and ?to= (RFC 3339 dates).
// @Tags         Analytics
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "Period start (RFC 3339)"
// @Param        to query string false "Period end (RFC 3339)"
// @Success      200 {object} types.Dashboard "Dashboard"
// @Failure      403 {object} map[string]interface{} "Forbidden"
// @Router       /analytics/dashboard [get]
func (h *HandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetDashboard"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userID == "" {
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Authentication required", nil)
		return
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			api.ErrorResponse(w, r, api.CodeInvalidInput, "from must be an RFC 3339 timestamp", nil)
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			api.ErrorResponse(w, r, api.CodeInvalidInput, "to must be an RFC 3339 timestamp", nil)
			return
		}
		to = parsed
	}
	if !from.Before(to) {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "from must be before to", nil)
		return
	}

	dashboard, err := h.service.Dashboard(ctx, userID, from, to)
	if err != nil {
		l.WarnContext(ctx, "Dashboard query failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, dashboard, nil)
}
