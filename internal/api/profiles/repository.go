package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// Repository loads the tenant/role binding for a verified identity. Every
// tenant-scoped feature resolves the caller through this before authorizing.
type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*types.Profile, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresRepository(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*types.Profile, error) {
	var p types.Profile
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, user_id, tenant_id, role, full_name, email, COALESCE(phone, ''), created_at, updated_at
         FROM profiles
         WHERE user_id = $1`,
		userID).Scan(&p.ID, &p.UserID, &p.TenantID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile by user id: %w", types.ErrDatabase)
	}
	return &p, nil
}
