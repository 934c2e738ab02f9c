package messaging

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
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]types.Message, error)
	Insert(ctx context.Context, tenantID uuid.UUID, params types.SendMessageParams, direction types.MessageDirection) (*types.Message, error)
	CustomerContact(ctx context.Context, customerID uuid.UUID) (tenantID uuid.UUID, ownerUserID *uuid.UUID, email string, err error)
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

// ListByCustomer returns the thread oldest first.
func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]types.Message, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT id, tenant_id, customer_id, direction, COALESCE(subject, ''), body, sent_at, created_at
         FROM messages
         WHERE customer_id = $1
         ORDER BY created_at
         LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", types.ErrDatabase)
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		var m types.Message
		err := rows.Scan(&m.ID, &m.TenantID, &m.CustomerID, &m.Direction,
			&m.Subject, &m.Body, &m.SentAt, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", types.ErrDatabase)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", types.ErrDatabase)
	}
	return messages, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, tenantID uuid.UUID, params types.SendMessageParams, direction types.MessageDirection) (*types.Message, error) {
	var m types.Message
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO messages (tenant_id, customer_id, direction, subject, body, sent_at)
         VALUES ($1, $2, $3, $4, $5, now())
         RETURNING id, tenant_id, customer_id, direction, COALESCE(subject, ''), body, sent_at, created_at`,
		tenantID, params.CustomerID, direction, params.Subject, params.Body).
		Scan(&m.ID, &m.TenantID, &m.CustomerID, &m.Direction,
			&m.Subject, &m.Body, &m.SentAt, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", types.ErrDatabase)
	}
	return &m, nil
}

func (r *PostgresRepository) CustomerContact(ctx context.Context, customerID uuid.UUID) (uuid.UUID, *uuid.UUID, string, error) {
	var tenantID uuid.UUID
	var ownerUserID *uuid.UUID
	var email string
	err := r.pgpool.QueryRow(ctx,
		"SELECT tenant_id, user_id, email FROM customers WHERE id = $1",
		customerID).Scan(&tenantID, &ownerUserID, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil, "", fmt.Errorf("customer %s: %w", customerID, types.ErrNotFound)
		}
		return uuid.Nil, nil, "", fmt.Errorf("resolve customer: %w", types.ErrDatabase)
	}
	return tenantID, ownerUserID, email, nil
}
