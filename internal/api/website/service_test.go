package website

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Get(ctx context.Context, tenantID uuid.UUID) (*types.WebsiteSettings, error) {
	args := m.Called(ctx, tenantID)
	s, _ := args.Get(0).(*types.WebsiteSettings)
	return s, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, tenantID uuid.UUID, params types.UpdateWebsiteSettingsParams) (*types.WebsiteSettings, error) {
	args := m.Called(ctx, tenantID, params)
	s, _ := args.Get(0).(*types.WebsiteSettings)
	return s, args.Error(1)
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

func TestUpdateSettings_StaffGetsAdminOnly(t *testing.T) {
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: uuid.New(), Role: types.RoleStaff}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.UpdateSettings(context.Background(), caller.UserID.String(), types.UpdateWebsiteSettingsParams{})

	assert.ErrorIs(t, err, types.ErrAdminOnly)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings_AdminUpdates(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleAdmin}
	deposit := int64(3000)
	params := types.UpdateWebsiteSettingsParams{DepositBps: &deposit}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Update", mock.Anything, tenantID, params).
		Return(&types.WebsiteSettings{TenantID: tenantID, DepositBps: 3000}, nil)

	svc := NewService(repo, profileRepo, testLogger())
	settings, err := svc.UpdateSettings(context.Background(), caller.UserID.String(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(3000), settings.DepositBps)
	repo.AssertExpectations(t)
}

func TestUpdateSettings_RejectsOutOfRangeDeposit(t *testing.T) {
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: uuid.New(), Role: types.RoleAdmin}
	deposit := int64(12000)

	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)

	svc := NewService(new(MockRepository), profileRepo, testLogger())
	_, err := svc.UpdateSettings(context.Background(), caller.UserID.String(),
		types.UpdateWebsiteSettingsParams{DepositBps: &deposit})

	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestDepositRates_ReadsStoredSettings(t *testing.T) {
	tenantID := uuid.New()

	repo := new(MockRepository)
	repo.On("Get", mock.Anything, tenantID).
		Return(&types.WebsiteSettings{TenantID: tenantID, TaxRateBps: 825, DepositBps: 2500}, nil)

	svc := NewService(repo, new(MockProfileRepo), testLogger())
	tax, deposit, err := svc.DepositRates(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Equal(t, int64(825), tax)
	assert.Equal(t, int64(2500), deposit)
}
