package payments

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
	ListInvoices(w http.ResponseWriter, r *http.Request)
	GetInvoice(w http.ResponseWriter, r *http.Request)
	CreateInvoice(w http.ResponseWriter, r *http.Request)
	RecordPayment(w http.ResponseWriter, r *http.Request)
	CreateDepositIntent(w http.ResponseWriter, r *http.Request)
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

// ListInvoices godoc
// @Summary      List Invoices
// @Description  Lists invoices for the tenant, newest first. Customers see only their own.
// @Tags         Payments
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page (1-based)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} map[string]interface{} "Invoices"
// @Router       /invoices [get]
func (h *HandlerImpl) ListInvoices(w http.ResponseWriter, r *http.Request) {
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

	invoices, total, err := h.service.ListInvoices(ctx, userID, page, pageSize)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, invoices, map[string]interface{}{
		"pagination": map[string]int{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// GetInvoice godoc
// @Summary      Get Invoice
// @Tags         Payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Invoice ID"
// @Success      200 {object} types.Invoice "Invoice"
// @Router       /invoices/{id} [get]
func (h *HandlerImpl) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid id", nil)
		return
	}

	invoice, err := h.service.GetInvoice(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, invoice, nil)
}

// CreateInvoice godoc
// @Summary      Create Invoice
// @Description  Creates a draft invoice. Totals are computed server-side from line items and the tax rate.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateInvoiceParams true "Invoice"
// @Success      201 {object} types.Invoice "Created"
// @Router       /invoices [post]
func (h *HandlerImpl) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateInvoice"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.CreateInvoiceParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	invoice, err := h.service.CreateInvoice(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, invoice, nil)
}

// RecordPayment godoc
// @Summary      Record Payment
// @Description  Records a received payment against an invoice. A fully covered invoice flips to paid.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.RecordPaymentParams true "Payment"
// @Success      201 {object} types.Payment "Recorded"
// @Router       /payments [post]
func (h *HandlerImpl) RecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.RecordPaymentParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	payment, err := h.service.RecordPayment(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, payment, nil)
}

// CreateDepositIntent godoc
// @Summary      Create Deposit Intent
// @Description  Creates a provider-side payment intent for a booking deposit. The Idempotency-Key header is forwarded to the provider.
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key header string false "Idempotency key forwarded to the payment provider"
// @Param        body body types.DepositIntentParams true "Deposit request"
// @Success      201 {object} types.DepositIntent "Intent"
// @Router       /payments/deposit-intent [post]
func (h *HandlerImpl) CreateDepositIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateDepositIntent"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.DepositIntentParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	intent, err := h.service.CreateDepositIntent(ctx, userID, params, r.Header.Get("Idempotency-Key"))
	if err != nil {
		l.WarnContext(ctx, "Deposit intent failed", slog.Any("error", err))
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, intent, nil)
}
