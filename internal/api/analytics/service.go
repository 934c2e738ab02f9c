package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

const topCustomerLimit = 10

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Dashboard(ctx context.Context, callerID string, from, to time.Time) (*types.Dashboard, error)
}

type ServiceImpl struct {
	repo     Repository
	profiles profiles.Repository
	cache    *cache.Cache
	logger   *slog.Logger
}

// NewService memoizes dashboard payloads for cacheTTL; the aggregates are
// expensive and tolerate slightly stale reads.
func NewService(repo Repository, profileRepo profiles.Repository, cacheTTL time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		profiles: profileRepo,
		cache:    cache.New(cacheTTL, 2*cacheTTL),
		logger:   logger,
	}
}

// Dashboard assembles the admin dashboard. The three aggregates are
// independent queries and run concurrently.
func (s *ServiceImpl) Dashboard(ctx context.Context, callerID string, from, to time.Time) (*types.Dashboard, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpAnalyticsRead, nil); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("dashboard:%s:%d:%d", caller.TenantID, from.Unix(), to.Unix())
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*types.Dashboard), nil
	}

	var dashboard types.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		top, err := s.repo.TopCustomers(gctx, caller.TenantID, topCustomerLimit)
		if err != nil {
			return err
		}
		dashboard.TopCustomers = top
		return nil
	})
	g.Go(func() error {
		funnel, err := s.repo.Funnel(gctx, caller.TenantID)
		if err != nil {
			return err
		}
		dashboard.Funnel = funnel
		return nil
	})
	g.Go(func() error {
		revenue, err := s.repo.Revenue(gctx, caller.TenantID, from, to)
		if err != nil {
			return err
		}
		dashboard.Revenue = *revenue
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, &dashboard)
	s.logger.DebugContext(ctx, "dashboard computed",
		slog.String("tenant_id", caller.TenantID.String()))
	return &dashboard, nil
}
