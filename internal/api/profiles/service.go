package profiles

import (
	"context"
	"log/slog"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetCurrentProfile(ctx context.Context, userID string) (*types.Profile, error)
}

type ServiceImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// GetCurrentProfile returns the caller's tenant/role binding. A verified
// identity without a profile row gets ErrProfileNotFound, which the API
// layer renders as the "No profile" 404 the frontends match on.
func (s *ServiceImpl) GetCurrentProfile(ctx context.Context, userID string) (*types.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}
