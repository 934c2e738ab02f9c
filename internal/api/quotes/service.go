package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	List(ctx context.Context, callerID string, page, pageSize int) ([]types.Quote, int, error)
	Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Quote, error)
	Create(ctx context.Context, callerID string, params types.CreateQuoteParams) (*types.Quote, error)
	Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateQuoteParams) (*types.Quote, error)
	Accept(ctx context.Context, callerID string, id uuid.UUID, params types.AcceptQuoteParams) (*types.Booking, error)
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

func lineItemTotal(items []types.QuoteLineItem) int64 {
	var total int64
	for _, li := range items {
		total += int64(li.Quantity) * li.PriceCents
	}
	return total
}

func (s *ServiceImpl) List(ctx context.Context, callerID string, page, pageSize int) ([]types.Quote, int, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteList, nil); err != nil {
		return nil, 0, err
	}

	var owner *uuid.UUID
	if caller.Role == types.RoleCustomer {
		owner = &caller.UserID
	}
	return s.repo.List(ctx, caller.TenantID, owner, page, pageSize)
}

func (s *ServiceImpl) Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Quote, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.quoteResource(ctx, quote)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteRead, res); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *ServiceImpl) Create(ctx context.Context, callerID string, params types.CreateQuoteParams) (*types.Quote, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteCreate, nil); err != nil {
		return nil, err
	}
	if params.CustomerID == uuid.Nil || len(params.LineItems) == 0 {
		return nil, fmt.Errorf("customer_id and line_items are required: %w", types.ErrMissingField)
	}
	for _, li := range params.LineItems {
		if li.Quantity <= 0 || li.PriceCents < 0 {
			return nil, fmt.Errorf("line items need positive quantity and non-negative price: %w", types.ErrValidation)
		}
	}

	tenantID, _, err := s.repo.CustomerRef(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteCreate, &authz.Resource{TenantID: tenantID}); err != nil {
		return nil, err
	}

	quote, err := s.repo.Create(ctx, caller.TenantID, params, lineItemTotal(params.LineItems))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "quote created",
		slog.String("quote_id", quote.ID.String()),
		slog.Int64("total_cents", quote.TotalCents))
	return quote, nil
}

func (s *ServiceImpl) Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateQuoteParams) (*types.Quote, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteUpdate, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return nil, err
	}
	if existing.Status == types.QuoteAccepted || existing.Status == types.QuoteDeclined {
		return nil, fmt.Errorf("quote is %s and can no longer change: %w", existing.Status, types.ErrConflict)
	}

	// Changing line items recomputes the stored total.
	var total *int64
	if params.LineItems != nil {
		t := lineItemTotal(*params.LineItems)
		total = &t
	}
	return s.repo.Update(ctx, id, params, total)
}

// Accept flips a sent quote to accepted and creates a confirmed booking
// from it. Customers may accept their own quotes; expired quotes are
// rejected.
func (s *ServiceImpl) Accept(ctx context.Context, callerID string, id uuid.UUID, params types.AcceptQuoteParams) (*types.Booking, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.quoteResource(ctx, quote)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpQuoteAccept, res); err != nil {
		return nil, err
	}

	if quote.Status != types.QuoteSent {
		return nil, fmt.Errorf("only sent quotes can be accepted: %w", types.ErrConflict)
	}
	if quote.ValidUntil != nil && time.Now().After(*quote.ValidUntil) {
		return nil, fmt.Errorf("quote expired on %s: %w", quote.ValidUntil.Format(time.DateOnly), types.ErrConflict)
	}
	if params.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("scheduled_at is required: %w", types.ErrMissingField)
	}

	booking, err := s.repo.AcceptIntoBooking(ctx, quote, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "quote accepted",
		slog.String("quote_id", quote.ID.String()),
		slog.String("booking_id", booking.ID.String()))
	return booking, nil
}

func (s *ServiceImpl) quoteResource(ctx context.Context, q *types.Quote) (*authz.Resource, error) {
	_, ownerUserID, err := s.repo.CustomerRef(ctx, q.CustomerID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: q.TenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	return res, nil
}
