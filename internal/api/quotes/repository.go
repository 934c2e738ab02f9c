package quotes

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
	List(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Quote, int, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Quote, error)
	Create(ctx context.Context, tenantID uuid.UUID, params types.CreateQuoteParams, totalCents int64) (*types.Quote, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateQuoteParams, totalCents *int64) (*types.Quote, error)
	// AcceptIntoBooking flips the quote to accepted and creates the booking
	// in one transaction, so a crash cannot leave an accepted quote without
	// its booking.
	AcceptIntoBooking(ctx context.Context, quote *types.Quote, params types.AcceptQuoteParams) (*types.Booking, error)
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

const quoteColumns = `id, tenant_id, customer_id, status, line_items, total_cents,
    valid_until, COALESCE(notes, ''), created_at, updated_at`

func scanQuote(row pgx.Row) (*types.Quote, error) {
	var q types.Quote
	err := row.Scan(&q.ID, &q.TenantID, &q.CustomerID, &q.Status, &q.LineItems,
		&q.TotalCents, &q.ValidUntil, &q.Notes, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Quote, int, error) {
	where := "q.tenant_id = $1"
	args := []any{tenantID}
	if ownerUserID != nil {
		where += " AND c.user_id = $2"
		args = append(args, *ownerUserID)
	}

	var total int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes q JOIN customers c ON c.id = q.customer_id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count quotes: %w", types.ErrDatabase)
	}

	limitArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.pgpool.Query(ctx,
		`SELECT q.id, q.tenant_id, q.customer_id, q.status, q.line_items, q.total_cents,
                q.valid_until, COALESCE(q.notes, ''), q.created_at, q.updated_at
         FROM quotes q
         JOIN customers c ON c.id = q.customer_id
         WHERE `+where+`
         ORDER BY q.created_at DESC
         LIMIT $`+fmt.Sprint(len(args)+1)+` OFFSET $`+fmt.Sprint(len(args)+2),
		limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list quotes: %w", types.ErrDatabase)
	}
	defer rows.Close()

	quotes := make([]types.Quote, 0, pageSize)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan quote: %w", types.ErrDatabase)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate quotes: %w", types.ErrDatabase)
	}
	return quotes, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*types.Quote, error) {
	q, err := scanQuote(r.pgpool.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get quote: %w", types.ErrDatabase)
	}
	return q, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateQuoteParams, totalCents int64) (*types.Quote, error) {
	q, err := scanQuote(r.pgpool.QueryRow(ctx,
		`INSERT INTO quotes (tenant_id, customer_id, status, line_items, total_cents, valid_until, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+quoteColumns,
		tenantID, params.CustomerID, types.QuoteDraft, params.LineItems,
		totalCents, params.ValidUntil, params.Notes))
	if err != nil {
		return nil, fmt.Errorf("insert quote: %w", types.ErrDatabase)
	}
	return q, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateQuoteParams, totalCents *int64) (*types.Quote, error) {
	q, err := scanQuote(r.pgpool.QueryRow(ctx,
		`UPDATE quotes SET
            status      = COALESCE($2, status),
            line_items  = COALESCE($3, line_items),
            total_cents = COALESCE($4, total_cents),
            valid_until = COALESCE($5, valid_until),
            notes       = COALESCE($6, notes),
            updated_at  = now()
         WHERE id = $1
         RETURNING `+quoteColumns,
		id, params.Status, params.LineItems, totalCents, params.ValidUntil, params.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quote %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("update quote: %w", types.ErrDatabase)
	}
	return q, nil
}

func (r *PostgresRepository) AcceptIntoBooking(ctx context.Context, quote *types.Quote, params types.AcceptQuoteParams) (*types.Booking, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin accept tx: %w", types.ErrDatabase)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE quotes SET status = $2, updated_at = now()
         WHERE id = $1 AND status = $3`,
		quote.ID, types.QuoteAccepted, types.QuoteSent)
	if err != nil {
		return nil, fmt.Errorf("accept quote: %w", types.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("quote is no longer acceptable: %w", types.ErrConflict)
	}

	serviceName := "Quoted service"
	if len(quote.LineItems) > 0 {
		serviceName = quote.LineItems[0].Description
	}

	var b types.Booking
	err = tx.QueryRow(ctx,
		`INSERT INTO bookings (tenant_id, customer_id, service_name, vehicle, scheduled_at, status, base_price_cents, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, tenant_id, customer_id, service_name, COALESCE(vehicle, ''),
                   scheduled_at, status, base_price_cents, COALESCE(add_ons, '[]'::jsonb),
                   COALESCE(notes, ''), created_at, updated_at`,
		quote.TenantID, quote.CustomerID, serviceName, params.Vehicle,
		params.ScheduledAt, types.BookingConfirmed, quote.TotalCents,
		fmt.Sprintf("Created from quote %s", quote.ID)).
		Scan(&b.ID, &b.TenantID, &b.CustomerID, &b.ServiceName, &b.Vehicle,
			&b.ScheduledAt, &b.Status, &b.BasePriceCents, &b.AddOns, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create booking from quote: %w", types.ErrDatabase)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit accept tx: %w", types.ErrDatabase)
	}
	return &b, nil
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
