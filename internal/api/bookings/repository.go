package bookings

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
	List(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Booking, int, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Booking, error)
	Create(ctx context.Context, tenantID uuid.UUID, params types.CreateBookingParams) (*types.Booking, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateBookingParams) (*types.Booking, error)
	SetStatus(ctx context.Context, id uuid.UUID, status types.BookingStatus) (*types.Booking, error)
	// CustomerRef resolves the tenant and (optional) portal owner of a
	// customer record, for tenancy and ownership checks.
	CustomerRef(ctx context.Context, customerID uuid.UUID) (uuid.UUID, *uuid.UUID, error)
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

const bookingColumns = `id, tenant_id, customer_id, service_name, COALESCE(vehicle, ''),
    scheduled_at, status, base_price_cents, COALESCE(add_ons, '[]'::jsonb), COALESCE(notes, ''),
    created_at, updated_at`

func scanBooking(row pgx.Row) (*types.Booking, error) {
	var b types.Booking
	err := row.Scan(&b.ID, &b.TenantID, &b.CustomerID, &b.ServiceName, &b.Vehicle,
		&b.ScheduledAt, &b.Status, &b.BasePriceCents, &b.AddOns, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns the tenant's bookings, newest first. When ownerUserID is set
// the list is restricted to bookings of customer records that user owns.
func (r *PostgresRepository) List(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Booking, int, error) {
	where := "b.tenant_id = $1"
	args := []any{tenantID}
	if ownerUserID != nil {
		where += " AND c.user_id = $2"
		args = append(args, *ownerUserID)
	}

	var total int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings b JOIN customers c ON c.id = b.customer_id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", types.ErrDatabase)
	}

	limitArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.pgpool.Query(ctx,
		`SELECT b.id, b.tenant_id, b.customer_id, b.service_name, COALESCE(b.vehicle, ''),
                b.scheduled_at, b.status, b.base_price_cents, COALESCE(b.add_ons, '[]'::jsonb),
                COALESCE(b.notes, ''), b.created_at, b.updated_at
         FROM bookings b
         JOIN customers c ON c.id = b.customer_id
         WHERE `+where+`
         ORDER BY b.scheduled_at DESC
         LIMIT $`+fmt.Sprint(len(args)+1)+` OFFSET $`+fmt.Sprint(len(args)+2),
		limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", types.ErrDatabase)
	}
	defer rows.Close()

	bookings := make([]types.Booking, 0, pageSize)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", types.ErrDatabase)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings: %w", types.ErrDatabase)
	}
	return bookings, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*types.Booking, error) {
	b, err := scanBooking(r.pgpool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get booking: %w", types.ErrDatabase)
	}
	return b, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateBookingParams) (*types.Booking, error) {
	b, err := scanBooking(r.pgpool.QueryRow(ctx,
		`INSERT INTO bookings (tenant_id, customer_id, service_name, vehicle, scheduled_at, status, base_price_cents, add_ons, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+bookingColumns,
		tenantID, params.CustomerID, params.ServiceName, params.Vehicle,
		params.ScheduledAt, types.BookingPending, params.BasePriceCents,
		params.AddOns, params.Notes))
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", types.ErrDatabase)
	}
	return b, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateBookingParams) (*types.Booking, error) {
	b, err := scanBooking(r.pgpool.QueryRow(ctx,
		`UPDATE bookings SET
            service_name     = COALESCE($2, service_name),
            vehicle          = COALESCE($3, vehicle),
            scheduled_at     = COALESCE($4, scheduled_at),
            status           = COALESCE($5, status),
            base_price_cents = COALESCE($6, base_price_cents),
            add_ons          = COALESCE($7, add_ons),
            notes            = COALESCE($8, notes),
            updated_at       = now()
         WHERE id = $1
         RETURNING `+bookingColumns,
		id, params.ServiceName, params.Vehicle, params.ScheduledAt,
		params.Status, params.BasePriceCents, params.AddOns, params.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("update booking: %w", types.ErrDatabase)
	}
	return b, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status types.BookingStatus) (*types.Booking, error) {
	b, err := scanBooking(r.pgpool.QueryRow(ctx,
		`UPDATE bookings SET status = $2, updated_at = now()
         WHERE id = $1
         RETURNING `+bookingColumns,
		id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("set booking status: %w", types.ErrDatabase)
	}
	return b, nil
}

func (r *PostgresRepository) CustomerRef(ctx context.Context, customerID uuid.UUID) (uuid.UUID, *uuid.UUID, error) {
	var tenantID uuid.UUID
	var ownerUserID *uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		"SELECT tenant_id, user_id FROM customers WHERE id = $1",
		customerID).Scan(&tenantID, &ownerUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil, fmt.Errorf("customer %s: %w", customerID, types.ErrNotFound)
		}
		return uuid.Nil, nil, fmt.Errorf("resolve customer: %w", types.ErrDatabase)
	}
	return tenantID, ownerUserID, nil
}
