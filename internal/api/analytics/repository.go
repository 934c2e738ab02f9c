package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]types.CustomerValue, error)
	Funnel(ctx context.Context, tenantID uuid.UUID) ([]types.FunnelStage, error)
	Revenue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*types.RevenueSummary, error)
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

// TopCustomers ranks customers by lifetime collected revenue.
func (r *PostgresRepository) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]types.CustomerValue, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT c.id,
                c.first_name || ' ' || c.last_name,
                COUNT(DISTINCT b.id),
                COALESCE(SUM(p.amount_cents), 0),
                MAX(b.scheduled_at)
         FROM customers c
         LEFT JOIN bookings b ON b.customer_id = c.id
         LEFT JOIN invoices i ON i.customer_id = c.id
         LEFT JOIN payments p ON p.invoice_id = i.id AND p.status = 'succeeded'
         WHERE c.tenant_id = $1
         GROUP BY c.id, c.first_name, c.last_name
         ORDER BY COALESCE(SUM(p.amount_cents), 0) DESC
         LIMIT $2`,
		tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query top customers: %w", types.ErrDatabase)
	}
	defer rows.Close()

	var values []types.CustomerValue
	for rows.Next() {
		var v types.CustomerValue
		err := rows.Scan(&v.CustomerID, &v.Name, &v.BookingCount, &v.TotalRevenueCents, &v.LastBookingAt)
		if err != nil {
			return nil, fmt.Errorf("scan customer value: %w", types.ErrDatabase)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer values: %w", types.ErrDatabase)
	}
	return values, nil
}

// Funnel counts the quote-to-completion pipeline stages.
func (r *PostgresRepository) Funnel(ctx context.Context, tenantID uuid.UUID) ([]types.FunnelStage, error) {
	var sent, accepted, booked, completed int
	err := r.pgpool.QueryRow(ctx,
		`SELECT
            (SELECT COUNT(*) FROM quotes WHERE tenant_id = $1 AND status IN ('sent', 'accepted')),
            (SELECT COUNT(*) FROM quotes WHERE tenant_id = $1 AND status = 'accepted'),
            (SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status IN ('confirmed', 'completed')),
            (SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND status = 'completed')`,
		tenantID).Scan(&sent, &accepted, &booked, &completed)
	if err != nil {
		return nil, fmt.Errorf("query funnel: %w", types.ErrDatabase)
	}
	return []types.FunnelStage{
		{Stage: "quote_sent", Count: sent},
		{Stage: "quote_accepted", Count: accepted},
		{Stage: "booked", Count: booked},
		{Stage: "completed", Count: completed},
	}, nil
}

func (r *PostgresRepository) Revenue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*types.RevenueSummary, error) {
	summary := types.RevenueSummary{PeriodStart: from, PeriodEnd: to}
	err := r.pgpool.QueryRow(ctx,
		`SELECT
            COALESCE((SELECT SUM(total_cents) FROM invoices
                      WHERE tenant_id = $1 AND status <> 'void'
                        AND created_at >= $2 AND created_at < $3), 0),
            COALESCE((SELECT SUM(amount_cents) FROM payments
                      WHERE tenant_id = $1 AND status = 'succeeded'
                        AND paid_at >= $2 AND paid_at < $3), 0),
            (SELECT COUNT(*) FROM bookings
             WHERE tenant_id = $1 AND status = 'completed'
               AND scheduled_at >= $2 AND scheduled_at < $3)`,
		tenantID, from, to).
		Scan(&summary.InvoicedCents, &summary.CollectedCents, &summary.CompletedBookings)
	if err != nil {
		return nil, fmt.Errorf("query revenue: %w", types.ErrDatabase)
	}
	summary.OutstandingCents = summary.InvoicedCents - summary.CollectedCents
	if summary.OutstandingCents < 0 {
		summary.OutstandingCents = 0
	}
	return &summary, nil
}
