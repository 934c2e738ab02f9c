package bookings

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
	ListBookings(w http.ResponseWriter, r *http.Request)
	GetBooking(w http.ResponseWriter, r *http.Request)
	CreateBooking(w http.ResponseWriter, r *http.Request)
	UpdateBooking(w http.ResponseWriter, r *http.Request)
	CancelBooking(w http.ResponseWriter, r *http.Request)
	DepositPreview(w http.ResponseWriter, r *http.Request)
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

// ListBookings godoc
// @Summary      List Bookings
// @Description  Lists bookings for the tenant, newest first. Customers see only their own. Pagination is nested under meta.pagination.
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page (1-based)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} map[string]interface{} "Bookings"
// @Router       /bookings [get]
func (h *HandlerImpl) ListBookings(w http.ResponseWriter, r *http.Request) {
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

	bookings, total, err := h.service.List(ctx, userID, page, pageSize)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, bookings, map[string]interface{}{
		"pagination": map[string]int{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// GetBooking godoc
// @Summary      Get Booking
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Booking ID"
// @Success      200 {object} types.Booking "Booking"
// @Router       /bookings/{id} [get]
func (h *HandlerImpl) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.Get(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, booking, nil)
}

// CreateBooking godoc
// @Summary      Create Booking
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateBookingParams true "Booking"
// @Success      201 {object} types.Booking "Created"
// @Router       /bookings [post]
func (h *HandlerImpl) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateBooking"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.CreateBookingParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	booking, err := h.service.Create(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, booking, nil)
}

// UpdateBooking godoc
// @Summary      Update Booking
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Booking ID"
// @Param        body body types.UpdateBookingParams true "Fields to update"
// @Success      200 {object} types.Booking "Updated"
// @Router       /bookings/{id} [patch]
func (h *HandlerImpl) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params types.UpdateBookingParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	booking, err := h.service.Update(ctx, userID, id, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, booking, nil)
}

// CancelBooking godoc
// @Summary      Cancel Booking
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Booking ID"
// @Success      200 {object} types.Booking "Cancelled"
// @Router       /bookings/{id}/cancel [post]
func (h *HandlerImpl) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.Cancel(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, booking, nil)
}

// DepositPreview godoc
// @Summary      Deposit Preview
// @Description  Computes the subtotal/tax/total/deposit breakdown for a prospective booking. Nothing is persisted.
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.DepositPreviewParams true "Pricing inputs"
// @Success      200 {object} types.DepositPreview "Breakdown"
// @Router       /bookings/deposit-preview [post]
func (h *HandlerImpl) DepositPreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.DepositPreviewParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	preview, err := h.service.DepositPreview(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, preview, nil)
}
