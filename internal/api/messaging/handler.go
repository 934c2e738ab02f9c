package messaging

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListThread(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	SuggestReply(w http.ResponseWriter, r *http.Request)
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

// ListThread godoc
// @Summary      Message Thread
// @Description  Returns a customer's message log, oldest first.
// @Tags         Messaging
// @Produce      json
// @Security     BearerAuth
// @Param        customerId path string true "Customer ID"
// @Success      200 {array} types.Message "Messages"
// @Router       /messages/{customerId} [get]
func (h *HandlerImpl) ListThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	customerID, err := uuid.Parse(chi.URLParam(r, "customerId"))
	if err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid customer id", nil)
		return
	}

	messages, err := h.service.ListThread(ctx, userID, customerID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, messages, nil)
}

// SendMessage godoc
// @Summary      Send Message
// @Description  Logs an outbound message and emails it to the customer.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.SendMessageParams true "Message"
// @Success      201 {object} types.Message "Sent"
// @Router       /messages [post]
func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "SendMessage"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.SendMessageParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	message, err := h.service.Send(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, message, nil)
}

// SuggestReply godoc
// @Summary      Suggest Reply
// @Description  Drafts a reply to the customer's latest message. The draft is returned for staff review, never sent automatically.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.SuggestReplyParams true "Thread reference"
// @Success      200 {object} types.SuggestedReply "Draft"
// @Router       /messages/suggest-reply [post]
func (h *HandlerImpl) SuggestReply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.SuggestReplyParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	reply, err := h.service.SuggestReply(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, reply, nil)
}
