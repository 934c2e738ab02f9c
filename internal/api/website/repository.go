package website

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*types.WebsiteSettings, error)
	Update(ctx context.Context, tenantID uuid.UUID, params types.UpdateWebsiteSettingsParams) (*types.WebsiteSettings, error)
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

const settingsColumns = `tenant_id, business_name, COALESCE(tagline, ''), contact_email,
    COALESCE(contact_phone, ''), booking_enabled, deposit_bps, tax_rate_bps, updated_at`

func scanSettings(row pgx.Row) (*types.WebsiteSettings, error) {
	var s types.WebsiteSettings
	err := row.Scan(&s.TenantID, &s.BusinessName, &s.Tagline, &s.ContactEmail,
		&s.ContactPhone, &s.BookingEnabled, &s.DepositBps, &s.TaxRateBps, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) Get(ctx context.Context, tenantID uuid.UUID) (*types.WebsiteSettings, error) {
	s, err := scanSettings(r.pgpool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM website_settings WHERE tenant_id = $1`, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("website settings for tenant %s: %w", tenantID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get website settings: %w", types.ErrDatabase)
	}
	return s, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenantID uuid.UUID, params types.UpdateWebsiteSettingsParams) (*types.WebsiteSettings, error) {
	s, err := scanSettings(r.pgpool.QueryRow(ctx,
		`UPDATE website_settings SET
            business_name   = COALESCE($2, business_name),
            tagline         = COALESCE($3, tagline),
            contact_email   = COALESCE($4, contact_email),
            contact_phone   = COALESCE($5, contact_phone),
            booking_enabled = COALESCE($6, booking_enabled),
            deposit_bps     = COALESCE($7, deposit_bps),
            tax_rate_bps    = COALESCE($8, tax_rate_bps),
            updated_at      = now()
         WHERE tenant_id = $1
         RETURNING `+settingsColumns,
		tenantID, params.BusinessName, params.Tagline, params.ContactEmail,
		params.ContactPhone, params.BookingEnabled, params.DepositBps, params.TaxRateBps))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("website settings for tenant %s: %w", tenantID, types.ErrNotFound)
		}
		return nil, fmt.Errorf("update website settings: %w", types.ErrDatabase)
	}
	return s, nil
}
