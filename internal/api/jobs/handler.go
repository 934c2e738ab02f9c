package jobs

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
	ListJobs(w http.ResponseWriter, r *http.Request)
	GetJob(w http.ResponseWriter, r *http.Request)
	CreateJob(w http.ResponseWriter, r *http.Request)
	UpdateJob(w http.ResponseWriter, r *http.Request)
	CompleteJob(w http.ResponseWriter, r *http.Request)
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

// ListJobs godoc
// @Summary      List Jobs
// @Description  Lists the tenant's jobs ordered by schedule. Filter with ?status=.
// @Tags         Jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status (scheduled, in_progress, done, cancelled)"
// @Param        page query int false "Page (1-based)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Success      200 {object} map[string]interface{} "Jobs"
// @Router       /jobs [get]
func (h *HandlerImpl) ListJobs(w http.ResponseWriter, r *http.Request) {
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

	var status *types.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := types.JobStatus(raw)
		switch st {
		case types.JobScheduled, types.JobInProgress, types.JobDone, types.JobCancelled:
			status = &st
		default:
			api.ErrorResponse(w, r, api.CodeInvalidInput, "Unknown job status", nil)
			return
		}
	}

	jobs, total, err := h.service.List(ctx, userID, status, page, pageSize)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, jobs, map[string]interface{}{
		"pagination": map[string]int{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// GetJob godoc
// @Summary      Get Job
// @Tags         Jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Job ID"
// @Success      200 {object} types.Job "Job"
// @Router       /jobs/{id} [get]
func (h *HandlerImpl) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := h.service.Get(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, job, nil)
}

// CreateJob godoc
// @Summary      Create Job
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body types.CreateJobParams true "Job"
// @Success      201 {object} types.Job "Created"
// @Router       /jobs [post]
func (h *HandlerImpl) CreateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "CreateJob"))

	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var params types.CreateJobParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	job, err := h.service.Create(ctx, userID, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, job, nil)
}

// UpdateJob godoc
// @Summary      Update Job
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Job ID"
// @Param        body body types.UpdateJobParams true "Fields to update"
// @Success      200 {object} types.Job "Updated"
// @Router       /jobs/{id} [patch]
func (h *HandlerImpl) UpdateJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var params types.UpdateJobParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, api.CodeInvalidInput, "Invalid request format", err.Error())
		return
	}

	job, err := h.service.Update(ctx, userID, id, params)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, job, nil)
}

// CompleteJob godoc
// @Summary      Complete Job
// @Description  Marks a job done and stamps the completion time.
// @Tags         Jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Job ID"
// @Success      200 {object} types.Job "Completed"
// @Router       /jobs/{id}/complete [post]
func (h *HandlerImpl) CompleteJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	job, err := h.service.Complete(ctx, userID, id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, job, nil)
}
