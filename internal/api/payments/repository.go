package payments

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
	ListInvoices(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Invoice, int, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*types.Invoice, error)
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, params types.CreateInvoiceParams, subtotal, tax, total int64) (*types.Invoice, error)
	// RecordPayment inserts the payment and, when the invoice is fully
	// covered, marks it paid in the same transaction.
	RecordPayment(ctx context.Context, tenantID uuid.UUID, params types.RecordPaymentParams) (*types.Payment, error)
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]types.Payment, error)
	BookingForDeposit(ctx context.Context, bookingID uuid.UUID) (*types.Booking, *uuid.UUID, error)
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

const invoiceColumns = `id, tenant_id, customer_id, booking_id, status, line_items,
    subtotal_cents, tax_cents, total_cents, due_date, created_at, updated_at`

func scanInvoice(row pgx.Row) (*types.Invoice, error) {
	var inv types.Invoice
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.BookingID, &inv.Status,
		&inv.LineItems, &inv.SubtotalCents, &inv.TaxCents, &inv.TotalCents,
		&inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PostgresRepository) ListInvoices(ctx context.Context, tenantID uuid.UUID, ownerUserID *uuid.UUID, page, pageSize int) ([]types.Invoice, int, error) {
	where := "i.tenant_id = $1"
	args := []any{tenantID}
	if ownerUserID != nil {
		where += " AND c.user_id = $2"
		args = append(args, *ownerUserID)
	}

	var total int
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices i JOIN customers c ON c.id = i.customer_id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", types.ErrDatabase)
	}

	limitArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.pgpool.Query(ctx,
		`SELECT i.id, i.tenant_id, i.customer_id, i.booking_id, i.status, i.line_items,
                i.subtotal_cents, i.tax_cents, i.total_cents, i.due_date, i.created_at, i.updated_at
         FROM invoices i
         JOIN customers c ON c.id = i.customer_id
         WHERE `+where+`
         ORDER BY i.created_at DESC
         LIMIT $`+fmt.Sprint(len(args)+1)+` OFFSET $`+fmt.Sprint(len(args)+2),
		limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", types.ErrDatabase)
	}
	defer rows.Close()

	invoices := make([]types.Invoice, 0, pageSize)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", types.ErrDatabase)
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate invoices: %w", types.ErrDatabase)
	}
	return invoices, total, nil
}

func (r *PostgresRepository) GetInvoice(ctx context.Context, id uuid.UUID) (*types.Invoice, error) {
	inv, err := scanInvoice(r.pgpool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get invoice: %w", types.ErrDatabase)
	}
	return inv, nil
}

func (r *PostgresRepository) CreateInvoice(ctx context.Context, tenantID uuid.UUID, params types.CreateInvoiceParams, subtotal, tax, total int64) (*types.Invoice, error) {
	inv, err := scanInvoice(r.pgpool.QueryRow(ctx,
		`INSERT INTO invoices (tenant_id, customer_id, booking_id, status, line_items, subtotal_cents, tax_cents, total_cents, due_date)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING `+invoiceColumns,
		tenantID, params.CustomerID, params.BookingID, types.InvoiceDraft,
		params.LineItems, subtotal, tax, total, params.DueDate))
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", types.ErrDatabase)
	}
	return inv, nil
}

func (r *PostgresRepository) RecordPayment(ctx context.Context, tenantID uuid.UUID, params types.RecordPaymentParams) (*types.Payment, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", types.ErrDatabase)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var p types.Payment
	err = tx.QueryRow(ctx,
		`INSERT INTO payments (tenant_id, invoice_id, amount_cents, method, provider_ref, status, paid_at)
         VALUES ($1, $2, $3, $4, $5, $6, now())
         RETURNING id, tenant_id, invoice_id, amount_cents, method, COALESCE(provider_ref, ''), status, paid_at, created_at`,
		tenantID, params.InvoiceID, params.AmountCents, params.Method,
		params.ProviderRef, types.PaymentSucceeded).
		Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.AmountCents, &p.Method,
			&p.ProviderRef, &p.Status, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", types.ErrDatabase)
	}

	_, err = tx.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = now()
         WHERE id = $1
           AND status <> 'void'
           AND total_cents <= (SELECT COALESCE(SUM(amount_cents), 0) FROM payments
                               WHERE invoice_id = $1 AND status = 'succeeded')`,
		params.InvoiceID, types.InvoicePaid)
	if err != nil {
		return nil, fmt.Errorf("settle invoice: %w", types.ErrDatabase)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", types.ErrDatabase)
	}
	return &p, nil
}

func (r *PostgresRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]types.Payment, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT id, tenant_id, invoice_id, amount_cents, method, COALESCE(provider_ref, ''), status, paid_at, created_at
         FROM payments
         WHERE invoice_id = $1
         ORDER BY created_at`,
		invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", types.ErrDatabase)
	}
	defer rows.Close()

	var payments []types.Payment
	for rows.Next() {
		var p types.Payment
		err := rows.Scan(&p.ID, &p.TenantID, &p.InvoiceID, &p.AmountCents, &p.Method,
			&p.ProviderRef, &p.Status, &p.PaidAt, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", types.ErrDatabase)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", types.ErrDatabase)
	}
	return payments, nil
}

// BookingForDeposit loads the booking plus the portal owner of its customer
// record, for the deposit-intent authorization check.
func (r *PostgresRepository) BookingForDeposit(ctx context.Context, bookingID uuid.UUID) (*types.Booking, *uuid.UUID, error) {
	var b types.Booking
	var ownerUserID *uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		`SELECT b.id, b.tenant_id, b.customer_id, b.service_name, COALESCE(b.vehicle, ''),
                b.scheduled_at, b.status, b.base_price_cents, COALESCE(b.add_ons, '[]'::jsonb),
                COALESCE(b.notes, ''), b.created_at, b.updated_at, c.user_id
         FROM bookings b
         JOIN customers c ON c.id = b.customer_id
         WHERE b.id = $1`,
		bookingID).
		Scan(&b.ID, &b.TenantID, &b.CustomerID, &b.ServiceName, &b.Vehicle,
			&b.ScheduledAt, &b.Status, &b.BasePriceCents, &b.AddOns, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt, &ownerUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("booking %s: %w", bookingID, types.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("load booking for deposit: %w", types.ErrDatabase)
	}
	return &b, ownerUserID, nil
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
