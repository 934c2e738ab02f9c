package customers

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]types.Customer, int, error) {
	args := m.Called(ctx, tenantID, page, pageSize)
	customers, _ := args.Get(0).([]types.Customer)
	return customers, args.Int(1), args.Error(2)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*types.Customer)
	return c, args.Error(1)
}

func (m *MockRepository) GetWithin(ctx context.Context, db DB, id uuid.UUID) (*types.Customer, error) {
	args := m.Called(ctx, db, id)
	c, _ := args.Get(0).(*types.Customer)
	return c, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateCustomerParams) (*types.Customer, error) {
	args := m.Called(ctx, tenantID, params)
	c, _ := args.Get(0).(*types.Customer)
	return c, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error) {
	args := m.Called(ctx, id, params)
	c, _ := args.Get(0).(*types.Customer)
	return c, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*types.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*types.Profile)
	return p, args.Error(1)
}

// recordingScope invokes fn with a nil transaction and records the identity
// it was asked to apply.
type recordingScope struct {
	calls    int
	userID   string
	tenantID string
}

func (s *recordingScope) WithUser(ctx context.Context, userID, tenantID string, fn func(tx pgx.Tx) error) error {
	s.calls++
	s.userID = userID
	s.tenantID = tenantID
	return fn(nil)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGet_CustomerReadsThroughUserScope(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	customer := &types.Customer{ID: uuid.New(), TenantID: tenantID, UserID: &caller.UserID, FirstName: "Riley"}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	scope := &recordingScope{}
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("GetWithin", mock.Anything, mock.Anything, customer.ID).Return(customer, nil)

	svc := NewService(repo, profileRepo, scope, testLogger())
	got, err := svc.Get(context.Background(), caller.UserID.String(), customer.ID)

	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, 1, scope.calls)
	assert.Equal(t, caller.UserID.String(), scope.userID)
	assert.Equal(t, tenantID.String(), scope.tenantID)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGet_StaffReadsServiceRolePool(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	customer := &types.Customer{ID: uuid.New(), TenantID: tenantID, FirstName: "Sam"}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	scope := &recordingScope{}
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, customer.ID).Return(customer, nil)

	svc := NewService(repo, profileRepo, scope, testLogger())
	got, err := svc.Get(context.Background(), caller.UserID.String(), customer.ID)

	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Zero(t, scope.calls)
	repo.AssertNotCalled(t, "GetWithin", mock.Anything, mock.Anything, mock.Anything)
}

func TestGet_CustomerCannotReadOthersRecord(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	otherOwner := uuid.New()
	customer := &types.Customer{ID: uuid.New(), TenantID: tenantID, UserID: &otherOwner}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	scope := &recordingScope{}
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("GetWithin", mock.Anything, mock.Anything, customer.ID).Return(customer, nil)

	svc := NewService(repo, profileRepo, scope, testLogger())
	_, err := svc.Get(context.Background(), caller.UserID.String(), customer.ID)

	assert.ErrorIs(t, err, types.ErrForbidden)
}
