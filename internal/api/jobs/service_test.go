package jobs

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, tenantID uuid.UUID, status *types.JobStatus, page, pageSize int) ([]types.Job, int, error) {
	args := m.Called(ctx, tenantID, status, page, pageSize)
	jobs, _ := args.Get(0).([]types.Job)
	return jobs, args.Int(1), args.Error(2)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	args := m.Called(ctx, id)
	j, _ := args.Get(0).(*types.Job)
	return j, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateJobParams) (*types.Job, error) {
	args := m.Called(ctx, tenantID, params)
	j, _ := args.Get(0).(*types.Job)
	return j, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	args := m.Called(ctx, id, params)
	j, _ := args.Get(0).(*types.Job)
	return j, args.Error(1)
}

func (m *MockRepository) Complete(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	args := m.Called(ctx, id)
	j, _ := args.Get(0).(*types.Job)
	return j, args.Error(1)
}

func (m *MockRepository) BookingTenant(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, bookingID)
	tenantID, _ := args.Get(0).(uuid.UUID)
	return tenantID, args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*types.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*types.Profile)
	return p, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestComplete_ScheduledJob(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	job := &types.Job{ID: uuid.New(), TenantID: tenantID, Status: types.JobScheduled}
	completedAt := time.Now()
	done := &types.Job{ID: job.ID, TenantID: tenantID, Status: types.JobDone, CompletedAt: &completedAt}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, job.ID).Return(job, nil)
	repo.On("Complete", mock.Anything, job.ID).Return(done, nil)

	svc := NewService(repo, profileRepo, testLogger())
	got, err := svc.Complete(context.Background(), caller.UserID.String(), job.ID)

	require.NoError(t, err)
	assert.Equal(t, types.JobDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	repo.AssertExpectations(t)
}

func TestComplete_CancelledJobRejected(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	job := &types.Job{ID: uuid.New(), TenantID: tenantID, Status: types.JobCancelled}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, job.ID).Return(job, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Complete(context.Background(), caller.UserID.String(), job.ID)

	assert.ErrorIs(t, err, types.ErrConflict)
	repo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestUpdate_DoneJobRejected(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleAdmin}
	job := &types.Job{ID: uuid.New(), TenantID: tenantID, Status: types.JobDone}
	notes := "re-polish hood"

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, job.ID).Return(job, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Update(context.Background(), caller.UserID.String(), job.ID, types.UpdateJobParams{Notes: &notes})

	assert.ErrorIs(t, err, types.ErrConflict)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_CustomerForbidden(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	params := types.CreateJobParams{BookingID: uuid.New(), ScheduledAt: time.Now().Add(24 * time.Hour)}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("BookingTenant", mock.Anything, params.BookingID).Return(tenantID, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Create(context.Background(), caller.UserID.String(), params)

	assert.ErrorIs(t, err, types.ErrForbidden)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_MissingFields(t *testing.T) {
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: uuid.New(), Role: types.RoleStaff}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Create(context.Background(), caller.UserID.String(), types.CreateJobParams{})

	assert.ErrorIs(t, err, types.ErrMissingField)
	repo.AssertNotCalled(t, "BookingTenant", mock.Anything, mock.Anything)
}
