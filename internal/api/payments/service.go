package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/bookings"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

// SettingsSource exposes the tenant's pricing rates, owned by the website
// settings feature.
type SettingsSource interface {
	DepositRates(ctx context.Context, tenantID uuid.UUID) (taxRateBps, depositBps int64, err error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListInvoices(ctx context.Context, callerID string, page, pageSize int) ([]types.Invoice, int, error)
	GetInvoice(ctx context.Context, callerID string, id uuid.UUID) (*types.Invoice, error)
	CreateInvoice(ctx context.Context, callerID string, params types.CreateInvoiceParams) (*types.Invoice, error)
	RecordPayment(ctx context.Context, callerID string, params types.RecordPaymentParams) (*types.Payment, error)
	CreateDepositIntent(ctx context.Context, callerID string, params types.DepositIntentParams, idempotencyKey string) (*types.DepositIntent, error)
}

type ServiceImpl struct {
	repo     Repository
	provider PaymentProvider
	settings SettingsSource
	profiles profiles.Repository
	logger   *slog.Logger
}

func NewService(repo Repository, provider PaymentProvider, settings SettingsSource, profileRepo profiles.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		provider: provider,
		settings: settings,
		profiles: profileRepo,
		logger:   logger,
	}
}

func (s *ServiceImpl) ListInvoices(ctx context.Context, callerID string, page, pageSize int) ([]types.Invoice, int, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.Authorize(caller, authz.OpInvoiceList, nil); err != nil {
		return nil, 0, err
	}

	var owner *uuid.UUID
	if caller.Role == types.RoleCustomer {
		owner = &caller.UserID
	}
	return s.repo.ListInvoices(ctx, caller.TenantID, owner, page, pageSize)
}

func (s *ServiceImpl) GetInvoice(ctx context.Context, callerID string, id uuid.UUID) (*types.Invoice, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	_, ownerUserID, err := s.repo.CustomerRef(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: invoice.TenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	if err := authz.Authorize(caller, authz.OpInvoiceRead, res); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *ServiceImpl) CreateInvoice(ctx context.Context, callerID string, params types.CreateInvoiceParams) (*types.Invoice, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.CustomerID == uuid.Nil || len(params.LineItems) == 0 {
		return nil, fmt.Errorf("customer_id and line_items are required: %w", types.ErrMissingField)
	}

	tenantID, _, err := s.repo.CustomerRef(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpInvoiceCreate, &authz.Resource{TenantID: tenantID}); err != nil {
		return nil, err
	}

	var subtotal int64
	for _, li := range params.LineItems {
		if li.Quantity <= 0 || li.PriceCents < 0 {
			return nil, fmt.Errorf("line items need positive quantity and non-negative price: %w", types.ErrValidation)
		}
		subtotal += int64(li.Quantity) * li.PriceCents
	}
	tax := (subtotal*params.TaxRateBps + 5000) / 10000
	total := subtotal + tax

	invoice, err := s.repo.CreateInvoice(ctx, caller.TenantID, params, subtotal, tax, total)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "invoice created",
		slog.String("invoice_id", invoice.ID.String()),
		slog.Int64("total_cents", total))
	return invoice, nil
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, callerID string, params types.RecordPaymentParams) (*types.Payment, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.InvoiceID == uuid.Nil || params.Method == "" {
		return nil, fmt.Errorf("invoice_id and method are required: %w", types.ErrMissingField)
	}
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("amount_cents must be positive: %w", types.ErrValidation)
	}

	invoice, err := s.repo.GetInvoice(ctx, params.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpPaymentRecord, &authz.Resource{TenantID: invoice.TenantID}); err != nil {
		return nil, err
	}
	if invoice.Status == types.InvoiceVoid {
		return nil, fmt.Errorf("cannot pay a void invoice: %w", types.ErrConflict)
	}

	payment, err := s.repo.RecordPayment(ctx, caller.TenantID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "payment recorded",
		slog.String("payment_id", payment.ID.String()),
		slog.String("invoice_id", params.InvoiceID.String()),
		slog.Int64("amount_cents", params.AmountCents))
	return payment, nil
}

// CreateDepositIntent asks the provider for a deposit charge on a pending
// booking. The caller's Idempotency-Key header is forwarded so retries do
// not double-charge.
func (s *ServiceImpl) CreateDepositIntent(ctx context.Context, callerID string, params types.DepositIntentParams, idempotencyKey string) (*types.DepositIntent, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if params.BookingID == uuid.Nil {
		return nil, fmt.Errorf("booking_id is required: %w", types.ErrMissingField)
	}

	booking, ownerUserID, err := s.repo.BookingForDeposit(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	res := &authz.Resource{TenantID: booking.TenantID}
	if ownerUserID != nil {
		res.OwnerUserID = *ownerUserID
	}
	if err := authz.Authorize(caller, authz.OpDepositIntentCreate, res); err != nil {
		return nil, err
	}
	if booking.Status != types.BookingPending {
		return nil, fmt.Errorf("deposit is only collected on pending bookings: %w", types.ErrConflict)
	}

	taxBps, depositBps, err := s.settings.DepositRates(ctx, booking.TenantID)
	if err != nil {
		return nil, err
	}
	preview := bookings.ComputeDepositPreview(types.DepositPreviewParams{
		BasePriceCents: booking.BasePriceCents,
		AddOns:         booking.AddOns,
		TaxRateBps:     taxBps,
		DepositBps:     depositBps,
	})
	if preview.DepositCents <= 0 {
		return nil, fmt.Errorf("tenant does not collect deposits: %w", types.ErrValidation)
	}

	intent, err := s.provider.CreateDepositIntent(ctx, preview.DepositCents, idempotencyKey, map[string]string{
		"booking_id": booking.ID.String(),
		"tenant_id":  booking.TenantID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment provider: %w", err)
	}
	s.logger.InfoContext(ctx, "deposit intent created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("provider_ref", intent.ProviderRef),
		slog.Int64("amount_cents", intent.AmountCents))
	return intent, nil
}
