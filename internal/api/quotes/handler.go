package quotes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api"
	"github.com/shinedeck/shinedeck-api/internal/api/auth"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListQuotes(w http.ResponseWriter, r *http.Request)
	GetQuote(w http.ResponseWriter, r *http.Request)
	CreateQuote(w http.ResponseWriter, r *http.Request)
	UpdateQuote(w http.ResponseWriter, r *http.Request)
	AcceptQuote(w http.ResponseWriter, r *http.Request)
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

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// ListQuotes godoc
// @Summary      List Quotes
// @Description  Lists quotes for the tenant, newest first. Customers see only their own.
// @Tags         Quotes
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page (1-based)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} map[string]interface{} "Quotes"
// @Router       /quotes [get]
func (h *HandlerImpl) ListQuotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	quotes, total, err := h.service.List(ctx, userID, page, pageSize)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, quotes, map[string]interface{}{
		"pagination": map[string]int{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// GetQuote godoc
// @Summary      Get Quote
// @Tags         Quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote ID"
// @Success      200 {object} types.Quote "Quote"
// @Router       /quotes/{id} [get]
func (h *HandlerImpl) GetQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	quote, err := h.service.Get(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, quote, nil)
}

// CreateQuote godoc
// @Summary      Create Quote
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateQuoteParams true "Quote"
// @Success      201 {object} types.Quote "Created"
// @Router       /quotes [post]
func (h *HandlerImpl) CreateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateQuote"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.CreateQuoteParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	quote, err := h.service.Create(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, quote, nil)
}

// UpdateQuote godoc
// @Summary      Update Quote
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote ID"
// @Param        body body types.UpdateQuoteParams true "Fields to update"
// @Success      200 {object} types.Quote "Updated"
// @Router       /quotes/{id} [patch]
func (h *HandlerImpl) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params types.UpdateQuoteParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	quote, err := h.service.Update(ctx, userID, id, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, quote, nil)
}

// AcceptQuote godoc
// @Summary      Accept Quote
// @Description  Accepts a sent quote and creates a confirmed booking from it.
// @Tags         Quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Quote ID"
// @Param        body body types.AcceptQuoteParams true "Scheduling details"
// @Success      201 {object} types.Booking "Booking"
// @Failure      409 {object} map[string]interface{} "Not Acceptable In Current State"
// @Router       /quotes/{id}/accept [post]
func (h *HandlerImpl) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "AcceptQuote"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params types.AcceptQuoteParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	booking, err := h.service.Accept(ctx, userID, id, params)
	if err != nil {
		l.WarnContext(ctx, "Quote acceptance failed", slog.String("quote_id", id.String()), slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, booking, nil)
}
