package website

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
	GetSettings(ctx context.Context, callerID string) (*types.WebsiteSettings, error)
	UpdateSettings(ctx context.Context, callerID string, params types.UpdateWebsiteSettingsParams) (*types.WebsiteSettings, error)
	// DepositRates serves the payments feature; it reads the stored rates
	// without a caller check since it is invoked service-to-service.
	DepositRates(ctx context.Context, tenantID uuid.UUID) (int64, int64, error)
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

func (s *ServiceImpl) GetSettings(ctx context.Context, callerID string) (*types.WebsiteSettings, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpWebsiteRead, nil); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, caller.TenantID)
}

func (s *ServiceImpl) UpdateSettings(ctx context.Context, callerID string, params types.UpdateWebsiteSettingsParams) (*types.WebsiteSettings, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpWebsiteUpdate, nil); err != nil {
		return nil, err
	}

	if params.DepositBps != nil && (*params.DepositBps < 0 || *params.DepositBps > 10000) {
		return nil, fmt.Errorf("deposit_bps must be between 0 and 10000: %w", types.ErrValidation)
	}
	if params.TaxRateBps != nil && *params.TaxRateBps < 0 {
		return nil, fmt.Errorf("tax_rate_bps must not be negative: %w", types.ErrValidation)
	}

	settings, err := s.repo.Update(ctx, caller.TenantID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "website settings updated",
		slog.String("tenant_id", caller.TenantID.String()))
	return settings, nil
}

func (s *ServiceImpl) DepositRates(ctx context.Context, tenantID uuid.UUID) (int64, int64, error) {
	settings, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return 0, 0, err
	}
	return settings.TaxRateBps, settings.DepositBps, nil
}
