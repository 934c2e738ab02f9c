package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

// threadWindow caps how much history feeds the reply drafter.
const threadWindow = 50

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListThread(ctx context.Context, callerID string, customerID uuid.UUID) ([]types.Message, error)
	Send(ctx context.Context, callerID string, params types.SendMessageParams) (*types.Message, error)
	SuggestReply(ctx context.Context, callerID string, params types.SuggestReplyParams) (*types.SuggestedReply, error)
}

type ServiceImpl struct {
	repo     Repository
	sender   EmailSender
	drafter  ReplyDrafter // nil when the assist feature is disabled
	profiles profiles.Repository
	logger   *slog.Logger
}

func NewService(repo Repository, sender EmailSender, drafter ReplyDrafter, profileRepo profiles.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		sender:   sender,
		drafter:  drafter,
		profiles: profileRepo,
		logger:   logger,
	}
}

func (s *ServiceImpl) ListThread(ctx context.Context, callerID string, customerID uuid.UUID) ([]types.Message, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	tenantID, ownerUserID, _, err := s.repo.CustomerContact(ctx, customerID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: tenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	if err := authz.Authorize(caller, authz.OpMessageList, res); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customerID, threadWindow)
}

// Send logs the outbound message and delivers it to the customer's email.
// The log entry is written first; a delivery failure surfaces to the caller
// but the entry stays for retry visibility.
func (s *ServiceImpl) Send(ctx context.Context, callerID string, params types.SendMessageParams) (*types.Message, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.CustomerID == uuid.Nil || params.Body == "" {
		return nil, fmt.Errorf("customer_id and body are required: %w", types.ErrMissingField)
	}

	tenantID, _, email, err := s.repo.CustomerContact(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpMessageSend, &authz.Resource{TenantID: tenantID}); err != nil {
		return nil, err
	}

	message, err := s.repo.Insert(ctx, caller.TenantID, params, types.MessageOutbound)
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, email, params.Subject, params.Body); err != nil {
		s.logger.ErrorContext(ctx, "email delivery failed",
			slog.String("message_id", message.ID.String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("deliver message: %w", err)
	}
	return message, nil
}

// SuggestReply drafts a reply to the customer's thread. Nothing is sent or
// stored; staff review and edit before sending.
func (s *ServiceImpl) SuggestReply(ctx context.Context, callerID string, params types.SuggestReplyParams) (*types.SuggestedReply, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if s.drafter == nil {
		return nil, fmt.Errorf("reply assist is not enabled: %w", types.ErrNotFound)
	}
	if params.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("customer_id is required: %w", types.ErrMissingField)
	}

	tenantID, _, _, err := s.repo.CustomerContact(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpMessageAssist, &authz.Resource{TenantID: tenantID}); err != nil {
		return nil, err
	}

	thread, err := s.repo.ListByCustomer(ctx, params.CustomerID, threadWindow)
	if err != nil {
		return nil, err
	}
	if len(thread) == 0 {
		return nil, fmt.Errorf("no messages to reply to: %w", types.ErrNotFound)
	}

	draft, err := s.drafter.Draft(ctx, thread, params.Tone)
	if err != nil {
		return nil, fmt.Errorf("draft reply: %w", err)
	}
	return &types.SuggestedReply{Draft: draft}, nil
}
