package messaging

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

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]types.Message, error) {
	args := m.Called(ctx, customerID, limit)
	messages, _ := args.Get(0).([]types.Message)
	return messages, args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, tenantID uuid.UUID, params types.SendMessageParams, direction types.MessageDirection) (*types.Message, error) {
	args := m.Called(ctx, tenantID, params, direction)
	msg, _ := args.Get(0).(*types.Message)
	return msg, args.Error(1)
}

func (m *MockRepository) CustomerContact(ctx context.Context, customerID uuid.UUID) (uuid.UUID, *uuid.UUID, string, error) {
	args := m.Called(ctx, customerID)
	tenantID, _ := args.Get(0).(uuid.UUID)
	owner, _ := args.Get(1).(*uuid.UUID)
	return tenantID, owner, args.String(2), args.Error(3)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type MockDrafter struct {
	mock.Mock
}

func (m *MockDrafter) Draft(ctx context.Context, thread []types.Message, tone string) (string, error) {
	args := m.Called(ctx, thread, tone)
	return args.String(0), args.Error(1)
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

func TestSend_LogsAndDelivers(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	params := types.SendMessageParams{
		CustomerID: uuid.New(),
		Subject:    "Your detail is booked",
		Body:       "See you Saturday at 9am.",
	}

	repo := new(MockRepository)
	sender := new(MockSender)
	profileRepo := new(MockProfileRepo)

	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("CustomerContact", mock.Anything, params.CustomerID).Return(tenantID, (*uuid.UUID)(nil), "sam@example.com", nil)
	repo.On("Insert", mock.Anything, tenantID, params, types.MessageOutbound).
		Return(&types.Message{ID: uuid.New(), Body: params.Body, Direction: types.MessageOutbound}, nil)
	sender.On("Send", mock.Anything, "sam@example.com", params.Subject, params.Body).Return(nil)

	svc := NewService(repo, sender, nil, profileRepo, testLogger())
	message, err := svc.Send(context.Background(), caller.UserID.String(), params)

	require.NoError(t, err)
	assert.Equal(t, types.MessageOutbound, message.Direction)
	sender.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestSend_CustomerRoleForbidden(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleCustomer}
	params := types.SendMessageParams{CustomerID: uuid.New(), Body: "hi"}

	repo := new(MockRepository)
	sender := new(MockSender)
	profileRepo := new(MockProfileRepo)

	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("CustomerContact", mock.Anything, params.CustomerID).Return(tenantID, (*uuid.UUID)(nil), "x@example.com", nil)

	svc := NewService(repo, sender, nil, profileRepo, testLogger())
	_, err := svc.Send(context.Background(), caller.UserID.String(), params)

	assert.ErrorIs(t, err, types.ErrForbidden)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggestReply_DisabledReturnsNotFound(t *testing.T) {
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: uuid.New(), Role: types.RoleStaff}

	profileRepo := new(MockProfileRepo)
	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)

	svc := NewService(new(MockRepository), new(MockSender), nil, profileRepo, testLogger())
	_, err := svc.SuggestReply(context.Background(), caller.UserID.String(),
		types.SuggestReplyParams{CustomerID: uuid.New()})

	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSuggestReply_DraftsFromThread(t *testing.T) {
	tenantID := uuid.New()
	caller := &types.Profile{ID: uuid.New(), UserID: uuid.New(), TenantID: tenantID, Role: types.RoleStaff}
	customerID := uuid.New()
	thread := []types.Message{
		{Direction: types.MessageInbound, Body: "Can I move my appointment to Sunday?"},
	}

	repo := new(MockRepository)
	drafter := new(MockDrafter)
	profileRepo := new(MockProfileRepo)

	profileRepo.On("GetByUserID", mock.Anything, caller.UserID.String()).Return(caller, nil)
	repo.On("CustomerContact", mock.Anything, customerID).Return(tenantID, (*uuid.UUID)(nil), "x@example.com", nil)
	repo.On("ListByCustomer", mock.Anything, customerID, threadWindow).Return(thread, nil)
	drafter.On("Draft", mock.Anything, thread, "formal").Return("Of course, Sunday works.", nil)

	svc := NewService(repo, new(MockSender), drafter, profileRepo, testLogger())
	reply, err := svc.SuggestReply(context.Background(), caller.UserID.String(),
		types.SuggestReplyParams{CustomerID: customerID, Tone: "formal"})

	require.NoError(t, err)
	assert.Equal(t, "Of course, Sunday works.", reply.Draft)
	drafter.AssertExpectations(t)
}

func TestSESSender_DryRunSkipsClient(t *testing.T) {
	sender := NewSESSender(nil, "noreply@shinedeck.test", true, testLogger())

	err := sender.Send(context.Background(), "sam@example.com", "subject", "body")
	assert.NoError(t, err)
}
