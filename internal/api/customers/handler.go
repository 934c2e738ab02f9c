package customers

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
	ListCustomers(w http.ResponseWriter, r *http.Request)
	GetCustomer(w http.ResponseWriter, r *http.Request)
	CreateCustomer(w http.ResponseWriter, r *http.Request)
	UpdateCustomer(w http.ResponseWriter, r *http.Request)
	DeleteCustomer(w http.ResponseWriter, r *http.Request)
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

// parsePagination reads ?page= and ?page_size= with the legacy defaults.
func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userID == "" {
		api.ErrorResponse(w, r, api.CodeUnauthorized, "Authentication required", nil)
		return "", false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// ListCustomers godoc
// @Summary      List Customers
// @Description  Lists the tenant's customers. Pagination metadata is flat under meta (page, total).
// @Tags         Customers
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page (1-based)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} map[string]interface{} "Customers"
// @Router       /customers [get]
func (h *HandlerImpl) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	page, pageSize := parsePagination(r)

	customers, total, err := h.service.List(ctx, userID, page, pageSize)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.PaginatedResponse(w, r, customers, page, total)
}

// GetCustomer godoc
// @Summary      Get Customer
// @Tags         Customers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer ID"
// @Success      200 {object} types.Customer "Customer"
// @Failure      404 {object} map[string]interface{} "Not Found"
// @Router       /customers/{id} [get]
func (h *HandlerImpl) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.service.Get(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, customer, nil)
}

// CreateCustomer godoc
// @Summary      Create Customer
// @Tags         Customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateCustomerParams true "Customer"
// @Success      201 {object} types.Customer "Created"
// @Router       /customers [post]
func (h *HandlerImpl) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateCustomer"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.CreateCustomerParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	customer, err := h.service.Create(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, customer, nil)
}

// UpdateCustomer godoc
// @Summary      Update Customer
// @Tags         Customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer ID"
// @Param        body body types.UpdateCustomerParams true "Fields to update"
// @Success      200 {object} types.Customer "Updated"
// @Router       /customers/{id} [patch]
func (h *HandlerImpl) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var params types.UpdateCustomerParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	customer, err := h.service.Update(ctx, userID, id, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, customer, nil)
}

// DeleteCustomer godoc
// @Summary      Delete Customer
// @Description  Removes a customer record. Admin only.
// @Tags         Customers
// @Security     BearerAuth
// @Param        id path string true "Customer ID"
// @Success      200 {object} map[string]interface{} "Deleted"
// @Failure      403 {object} map[string]interface{} "Admin Only"
// @Router       /customers/{id} [delete]
func (h *HandlerImpl) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, map[string]string{"message": "Customer deleted"}, nil)
}
