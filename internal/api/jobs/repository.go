package jobs

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
	List(ctx context.Context, tenantID uuid.UUID, status *types.JobStatus, page, pageSize int) ([]types.Job, int, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Job, error)
	Create(ctx context.Context, tenantID uuid.UUID, params types.CreateJobParams) (*types.Job, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateJobParams) (*types.Job, error)
	Complete(ctx context.Context, id uuid.UUID) (*types.Job, error)
	BookingTenant(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, error)
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

const jobColumns = `id, tenant_id, booking_id, assigned_to, status, scheduled_at,
    started_at, completed_at, COALESCE(notes, ''), created_at, updated_at`

func scanJob(row pgx.Row) (*types.Job, error) {
	var j types.Job
	err := row.Scan(&j.ID, &j.TenantID, &j.BookingID, &j.AssignedTo, &j.Status,
		&j.ScheduledAt, &j.StartedAt, &j.CompletedAt, &j.Notes, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *PostgresRepository) List(ctx context.Context, tenantID uuid.UUID, status *types.JobStatus, page, pageSize int) ([]types.Job, int, error) {
	where := "tenant_id = $1"
	args := []any{tenantID}
	if status != nil {
		where += " AND status = $2"
		args = append(args, *status)
	}

	var total int
	err := r.pgpool.QueryRow(ctx,
		"SELECT COUNT(*) FROM jobs WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", types.ErrDatabase)
	}

	limitArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.pgpool.Query(ctx,
		`SELECT `+jobColumns+`
         FROM jobs
         WHERE `+where+`
         ORDER BY scheduled_at
         LIMIT $`+fmt.Sprint(len(args)+1)+` OFFSET $`+fmt.Sprint(len(args)+2),
		limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", types.ErrDatabase)
	}
	defer rows.Close()

	jobs := make([]types.Job, 0, pageSize)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", types.ErrDatabase)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", types.ErrDatabase)
	}
	return jobs, total, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	j, err := scanJob(r.pgpool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get job: %w", types.ErrDatabase)
	}
	return j, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tenantID uuid.UUID, params types.CreateJobParams) (*types.Job, error) {
	j, err := scanJob(r.pgpool.QueryRow(ctx,
		`INSERT INTO jobs (tenant_id, booking_id, assigned_to, status, scheduled_at, notes)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING `+jobColumns,
		tenantID, params.BookingID, params.AssignedTo, types.JobScheduled,
		params.ScheduledAt, params.Notes))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", types.ErrDatabase)
	}
	return j, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	// Moving to in_progress stamps started_at once.
	j, err := scanJob(r.pgpool.QueryRow(ctx,
		`UPDATE jobs SET
            assigned_to  = COALESCE($2, assigned_to),
            status       = COALESCE($3, status),
            scheduled_at = COALESCE($4, scheduled_at),
            notes        = COALESCE($5, notes),
            started_at   = CASE WHEN $3 = 'in_progress' AND started_at IS NULL THEN now() ELSE started_at END,
            updated_at   = now()
         WHERE id = $1
         RETURNING `+jobColumns,
		id, params.AssignedTo, params.Status, params.ScheduledAt, params.Notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("update job: %w", types.ErrDatabase)
	}
	return j, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	j, err := scanJob(r.pgpool.QueryRow(ctx,
		`UPDATE jobs SET status = $2, completed_at = now(), updated_at = now()
         WHERE id = $1
         RETURNING `+jobColumns,
		id, types.JobDone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, types.ErrNotFound)
		}
		return nil, fmt.Errorf("complete job: %w", types.ErrDatabase)
	}
	return j, nil
}

func (r *PostgresRepository) BookingTenant(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := r.pgpool.QueryRow(ctx,
		"SELECT tenant_id FROM bookings WHERE id = $1", bookingID).Scan(&tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("booking %s: %w", bookingID, types.ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("resolve booking: %w", types.ErrDatabase)
	}
	return tenantID, nil
}
