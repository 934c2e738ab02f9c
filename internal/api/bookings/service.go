package bookings

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
	List(ctx context.Context, callerID string, page, pageSize int) ([]types.Booking, int, error)
	Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Booking, error)
	Create(ctx context.Context, callerID string, params types.CreateBookingParams) (*types.Booking, error)
	Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateBookingParams) (*types.Booking, error)
	Cancel(ctx context.Context, callerID string, id uuid.UUID) (*types.Booking, error)
	DepositPreview(ctx context.Context, callerID string, params types.DepositPreviewParams) (*types.DepositPreview, error)
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

func (s *ServiceImpl) List(ctx context.Context, callerID string, page, pageSize int) ([]types.Booking, int, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.Authorize(caller, authz.OpBookingList, nil); err != nil {
		return nil, 0, err
	}

	// Customers only ever see bookings on their own customer record.
	var owner *uuid.UUID
	if caller.Role == types.RoleCustomer {
		owner = &caller.UserID
	}
	return s.repo.List(ctx, caller.TenantID, owner, page, pageSize)
}

func (s *ServiceImpl) Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Booking, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.bookingResource(ctx, booking)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpBookingRead, res); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *ServiceImpl) Create(ctx context.Context, callerID string, params types.CreateBookingParams) (*types.Booking, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if params.CustomerID == uuid.Nil || params.ServiceName == "" || params.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("customer_id, service_name and scheduled_at are required: %w", types.ErrMissingField)
	}
	if params.BasePriceCents < 0 {
		return nil, fmt.Errorf("base_price_cents must not be negative: %w", types.ErrValidation)
	}

	tenantID, ownerUserID, err := s.repo.CustomerRef(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: tenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	if err := authz.Authorize(caller, authz.OpBookingCreate, res); err != nil {
		return nil, err
	}

	booking, err := s.repo.Create(ctx, caller.TenantID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("customer_id", params.CustomerID.String()))
	return booking, nil
}

func (s *ServiceImpl) Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateBookingParams) (*types.Booking, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpBookingUpdate, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return nil, err
	}
	if params.Status != nil && !validTransition(existing.Status, *params.Status) {
		return nil, fmt.Errorf("cannot move booking from %s to %s: %w", existing.Status, *params.Status, types.ErrValidation)
	}
	return s.repo.Update(ctx, id, params)
}

// Cancel marks a booking cancelled. Completed bookings stay completed.
func (s *ServiceImpl) Cancel(ctx context.Context, callerID string, id uuid.UUID) (*types.Booking, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.bookingResource(ctx, existing)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpBookingCancel, res); err != nil {
		return nil, err
	}
	if !validTransition(existing.Status, types.BookingCancelled) {
		return nil, fmt.Errorf("cannot cancel a %s booking: %w", existing.Status, types.ErrValidation)
	}
	return s.repo.SetStatus(ctx, id, types.BookingCancelled)
}

// DepositPreview computes the price breakdown without persisting anything.
func (s *ServiceImpl) DepositPreview(ctx context.Context, callerID string, params types.DepositPreviewParams) (*types.DepositPreview, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpBookingDepositPreview, nil); err != nil {
		return nil, err
	}
	if params.BasePriceCents < 0 || params.TaxRateBps < 0 || params.DepositBps < 0 || params.DepositBps > 10000 {
		return nil, fmt.Errorf("price and rates must be non-negative, deposit at most 10000 bps: %w", types.ErrValidation)
	}
	preview := ComputeDepositPreview(params)
	return &preview, nil
}

// ComputeDepositPreview derives the breakdown in integer cents. Rates are
// basis points; fractional cents round half up.
func ComputeDepositPreview(params types.DepositPreviewParams) types.DepositPreview {
	subtotal := params.BasePriceCents
	for _, a := range params.AddOns {
		subtotal += a.PriceCents
	}
	tax := bpsOf(subtotal, params.TaxRateBps)
	total := subtotal + tax
	deposit := bpsOf(total, params.DepositBps)
	return types.DepositPreview{
		SubtotalCents:   subtotal,
		TaxCents:        tax,
		TotalCents:      total,
		DepositCents:    deposit,
		BalanceDueCents: total - deposit,
	}
}

func bpsOf(amountCents, bps int64) int64 {
	return (amountCents*bps + 5000) / 10000
}

func (s *ServiceImpl) bookingResource(ctx context.Context, b *types.Booking) (*authz.Resource, error) {
	_, ownerUserID, err := s.repo.CustomerRef(ctx, b.CustomerID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: b.TenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	return res, nil
}

// validTransition encodes the booking lifecycle:
// pending -> confirmed | cancelled, confirmed -> completed | cancelled.
func validTransition(from, to types.BookingStatus) bool {
	switch from {
	case types.BookingPending:
		return to == types.BookingConfirmed || to == types.BookingCancelled || to == types.BookingPending
	case types.BookingConfirmed:
		return to == types.BookingCompleted || to == types.BookingCancelled || to == types.BookingConfirmed
	default:
		return to == from
	}
}
