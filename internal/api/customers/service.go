package customers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shinedeck/shinedeck-api/internal/api/authz"
	"github.com/shinedeck/shinedeck-api/internal/api/profiles"
	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// UserScope runs fn inside a transaction carrying the caller's identity,
// so row-level-security policies apply to every statement fn issues.
// auth.UserScopedDB implements it.
type UserScope interface {
	WithUser(ctx context.Context, userID, tenantID string, fn func(tx pgx.Tx) error) error
}

type Service interface {
	List(ctx context.Context, callerID string, page, pageSize int) ([]types.Customer, int, error)
	Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Customer, error)
	Create(ctx context.Context, callerID string, params types.CreateCustomerParams) (*types.Customer, error)
	Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error)
	Delete(ctx context.Context, callerID string, id uuid.UUID) error
}

type ServiceImpl struct {
	repo     Repository
	profiles profiles.Repository
	scoped   UserScope
	logger   *slog.Logger
}

func NewService(repo Repository, profileRepo profiles.Repository, scoped UserScope, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		profiles: profileRepo,
		scoped:   scoped,
		logger:   logger,
	}
}

func (s *ServiceImpl) List(ctx context.Context, callerID string, page, pageSize int) ([]types.Customer, int, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if err := authz.Authorize(caller, authz.OpCustomerList, nil); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, caller.TenantID, page, pageSize)
}

func (s *ServiceImpl) Get(ctx context.Context, callerID string, id uuid.UUID) (*types.Customer, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var customer *types.Customer
	if caller.Role == types.RoleCustomer && s.scoped != nil {
		// Customer portal reads run as the end user so the store's
		// row-level-security policies constrain the row set.
		err = s.scoped.WithUser(ctx, caller.UserID.String(), caller.TenantID.String(), func(tx pgx.Tx) error {
			customer, err = s.repo.GetWithin(ctx, tx, id)
			return err
		})
	} else {
		customer, err = s.repo.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	res := &authz.Resource{TenantID: customer.TenantID}
	if customer.UserID != nil {
		res.OwnerUserID = *customer.UserID
	}
	if err := authz.Authorize(caller, authz.OpCustomerRead, res); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *ServiceImpl) Create(ctx context.Context, callerID string, params types.CreateCustomerParams) (*types.Customer, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpCustomerCreate, nil); err != nil {
		return nil, err
	}
	if params.FirstName == "" || params.LastName == "" || params.Email == "" {
		return nil, fmt.Errorf("first_name, last_name and email are required: %w", types.ErrMissingField)
	}

	customer, err := s.repo.Create(ctx, caller.TenantID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "customer created",
		slog.String("customer_id", customer.ID.String()),
		slog.String("tenant_id", caller.TenantID.String()))
	return customer, nil
}

func (s *ServiceImpl) Update(ctx context.Context, callerID string, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error) {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(caller, authz.OpCustomerUpdate, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, params)
}

func (s *ServiceImpl) Delete(ctx context.Context, callerID string, id uuid.UUID) error {
	caller, err := s.profiles.GetByUserID(ctx, callerID)
	if err != nil {
		return err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(caller, authz.OpCustomerDelete, &authz.Resource{TenantID: existing.TenantID}); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
