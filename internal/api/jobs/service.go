package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	List(ctx context.Context, callerID string, status *types.JobStatus, page, pageSize int) ([]types.Job, int, error)
	Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Job, error)
	Create(ctx context.Context, callerID string, params types.CreateJobParams) (*types.Job, error)
	Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateJobParams) (*types.Job, error)
	Complete(ctx context.Context, callerID string, id uuid.UUID) (*types.Job, error)
}

type ServiceImpl struct {
	repo     Repository
	profiles profiles.Repository
	logger   *slog.Logger
}

func NewService(repo Repository, profileRepo profiles.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		profiles: profileRepo,
		logger:   logger,
	}
}

func (s *ServiceImpl) List(ctx context.Context, callerID string, status *types.JobStatus, page, pageSize int) ([]types.Job, int, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.Authorize(caller, authz.OpJobList, nil); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, caller.TenantID, status, page, pageSize)
}

func (s *ServiceImpl) Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Job, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpJobRead, &authz.Resource{TenantID: job.TenantID}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *ServiceImpl) Create(ctx context.Context, callerID string, params types.CreateJobParams) (*types.Job, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.BookingID == uuid.Nil || params.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("booking_id and scheduled_at are required: %w", types.ErrMissingField)
	}

	tenantID, err := s.repo.BookingTenant(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpJobCreate, &authz.Resource{TenantID: tenantID}); err != nil {
		return nil, err
	}

	job, err := s.repo.Create(ctx, caller.TenantID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "job created",
		slog.String("job_id", job.ID.String()),
		slog.String("booking_id", params.BookingID.String()))
	return job, nil
}

func (s *ServiceImpl) Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpJobUpdate, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return nil, err
	}
	if existing.Status == types.JobDone || existing.Status == types.JobCancelled {
		return nil, fmt.Errorf("job is %s and can no longer change: %w", existing.Status, types.ErrConflict)
	}
	return s.repo.Update(ctx, id, params)
}

func (s *ServiceImpl) Complete(ctx context.Context, callerID string, id uuid.UUID) (*types.Job, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpJobComplete, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return nil, err
	}
	if existing.Status != types.JobInProgress && existing.Status != types.JobScheduled {
		return nil, fmt.Errorf("cannot complete a %s job: %w", existing.Status, types.ErrConflict)
	}
	return s.repo.Complete(ctx, id)
}
