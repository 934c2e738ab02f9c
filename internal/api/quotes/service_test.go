package quotes

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

func (m *MockRepository) List(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Quote, int, error) {
	args := m.Called(ctx, tenantID, ownerUserID, page, pageSize)
	quotes, _ := args.Get(0).([]types.Quote)
	return quotes, args.Int(1), args.Error(2)
}

func (m *MockRepository) Get(ctx context.Context, id uuid.UUID) (*types.Quote, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*types.Quote)
	return q, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateQuoteParams, totalCents int64) (*types.Quote, error) {
	args := m.Called(ctx, tenantID, params, totalCents)
	q, _ := args.Get(0).(*types.Quote)
	return q, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateQuoteParams, totalCents *int64) (*types.Quote, error) {
	args := m.Called(ctx, id, params, totalCents)
	q, _ := args.Get(0).(*types.Quote)
	return q, args.Error(1)
}

func (m *MockRepository) AcceptIntoBooking(ctx context.Context, quote *types.Quote, params types.AcceptQuoteParams) (*types.Booking, error) {
	args := m.Called(ctx, quote, params)
	b, _ := args.Get(0).(*types.Booking)
	return b, args.Error(1)
}

func (m *MockRepository) CustomerRef(ctx context.Context, customerID uuid.UUID) (uuid.UUID, *uuid.UUID, error) {
	args := m.Called(ctx, customerID)
	tenantID, _ := args.Get(0).(uuid.UUID)
	owner, _ := args.Get(1).(*uuid.UUID)
	return tenantID, owner, args.Error(2)
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

func future(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestAccept_SentQuoteCreatesBooking(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	quote := &types.Quote{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: uuid.New(),
		Status:     types.QuoteSent,
		TotalCents: 25000,
		ValidUntil: future(48 * time.Hour),
		LineItems:  []types.QuoteLineItem{{Description: "Full detail", Quantity: 1, PriceCents: 25000}},
	}
	params := types.AcceptQuoteParams{ScheduledAt: time.Now().Add(72 * time.Hour)}
	booking := &types.Booking{ID: uuid.New(), Status: types.BookingConfirmed, BasePriceCents: 25000}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, quote.ID).Return(quote, nil)
	repo.On("CustomerRef", mock.Anything, quote.CustomerID).Return(tenantID, &caller.UserID, nil)
	repo.On("AcceptIntoBooking", mock.Anything, quote, params).Return(booking, nil)

	svc := NewService(repo, profileRepo, testLogger())
	got, err := svc.Accept(context.Background(), caller.UserID.String(), quote.ID, params)

	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestAccept_DraftQuoteRejected(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	quote := &types.Quote{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: uuid.New(),
		Status:     types.QuoteDraft,
	}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, quote.ID).Return(quote, nil)
	repo.On("CustomerRef", mock.Anything, quote.CustomerID).Return(tenantID, (*uuid.UUID)(nil), nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Accept(context.Background(), caller.UserID.String(), quote.ID, types.AcceptQuoteParams{ScheduledAt: time.Now()})

	assert.ErrorIs(t, err, types.ErrConflict)
	repo.AssertNotCalled(t, "AcceptIntoBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccept_ExpiredQuoteRejected(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	quote := &types.Quote{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: uuid.New(),
		Status:     types.QuoteSent,
		ValidUntil: future(-time.Hour),
	}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, quote.ID).Return(quote, nil)
	repo.On("CustomerRef", mock.Anything, quote.CustomerID).Return(tenantID, (*uuid.UUID)(nil), nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Accept(context.Background(), caller.UserID.String(), quote.ID, types.AcceptQuoteParams{ScheduledAt: time.Now()})

	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestAccept_OtherCustomersQuoteForbidden(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	otherOwner := uuid.New()
	quote := &types.Quote{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: uuid.New(),
		Status:     types.QuoteSent,
	}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("Get", mock.Anything, quote.ID).Return(quote, nil)
	repo.On("CustomerRef", mock.Anything, quote.CustomerID).Return(tenantID, &otherOwner, nil)

	svc := NewService(repo, profileRepo, testLogger())
	_, err := svc.Accept(context.Background(), caller.UserID.String(), quote.ID, types.AcceptQuoteParams{ScheduledAt: time.Now()})

	assert.ErrorIs(t, err, types.ErrForbidden)
	repo.AssertNotCalled(t, "AcceptIntoBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_TotalsLineItems(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	params := types.CreateQuoteParams{
		CustomerID: uuid.New(),
		LineItems: []types.QuoteLineItem{
			{Description: "Interior detail", Quantity: 1, PriceCents: 12000},
			{Description: "Ceramic coat", Quantity: 2, PriceCents: 40000},
		},
	}

	repo := new(MockRepository)
	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("CustomerRef", mock.Anything, params.CustomerID).Return(tenantID, (*uuid.UUID)(nil), nil)
	repo.On("Create", mock.Anything, tenantID, params, int64(92000)).
		Return(&types.Quote{ID: uuid.New(), TotalCents: 92000}, nil)

	svc := NewService(repo, profileRepo, testLogger())
	quote, err := svc.Create(context.Background(), caller.UserID.String(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(92000), quote.TotalCents)
	repo.AssertExpectations(t)
}
