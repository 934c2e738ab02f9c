package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it, which keeps repository tests off a live database.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresRepository)(nil)

type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]types.Customer, int, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Customer, error)
	GetWithin(ctx context.Context, db DB, id uuid.UUID) (*types.Customer, error)
	Create(ctx context.Context, tenantID uuid.UUID, params types.CreateCustomerParams) (*types.Customer, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresRepository struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresRepository(db DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

const customerColumns = `id, tenant_id, user_id, first_name, last_name, email,
    COALESCE(phone, ''), COALESCE(address, ''), COALESCE(notes, ''), created_at, updated_at`

func scanCustomer(row pgx.Row) (*types.Customer, error) {
	var c types.Customer
	err := row.Scan(&c.ID, &c.TenantID, &c.UserID, &c.FirstName, &c.LastName,
		&c.Email, &c.Phone, &c.Address, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]types.Customer, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM customers WHERE tenant_id = $1", tenantID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", types.ErrDatabase)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+customerColumns+`
         FROM customers
         WHERE tenant_id = $1
         ORDER BY last_name, first_name
         LIMIT $2 OFFSET $3`,
		tenantID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", types.ErrDatabase)
	}
	defer rows.Close()

	customers := make([]types.Customer, 0, pageSize)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", types.ErrDatabase)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", types.ErrDatabase)
	}
	return customers, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*types.Customer, error) {
	return r.GetWithin(ctx, r.db, id)
}

// GetWithin reads through the given executor instead of the repository's
// own pool. Passing a user-scoped transaction makes the read subject to the
// store's row-level-security policies.
func (r *PostgresRepository) GetWithin(ctx context.Context, db DB, id uuid.UUID) (*types.Customer, error) {
	c, err := scanCustomer(db.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer: %w", types.ErrDatabase)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateCustomerParams) (*types.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx,
		`INSERT INTO customers (tenant_id, first_name, last_name, email, phone, address, notes)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING `+customerColumns,
		tenantID, params.FirstName, params.LastName, params.Email,
		params.Phone, params.Address, params.Notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("customer email already exists: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("insert customer: %w", types.ErrDatabase)
	}
	return c, nil
}

// Update applies only the fields present in params; nil pointers leave the
// stored value untouched.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateCustomerParams) (*types.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx,
		`UPDATE customers SET
            first_name = COALESCE($2, first_name),
            last_name  = COALESCE($3, last_name),
            email      = COALESCE($4, email),
            phone      = COALESCE($5, phone),
            address    = COALESCE($6, address),
            notes      = COALESCE($7, notes),
            updated_at = now()
         WHERE id = $1
         RETURNING `+customerColumns,
		id, params.FirstName, params.LastName, params.Email,
		params.Phone, params.Address, params.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("update customer: %w", types.ErrDatabase)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", types.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", id, types.ErrNotFound)
	}
	return nil
}
