package customers

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewPostgresRepository(mockPool, logger), mockPool
}

func customerRows(c types.Customer) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "tenant_id", "user_id", "first_name", "last_name", "email",
		"phone", "address", "notes", "created_at", "updated_at",
	}).AddRow(c.ID, c.TenantID, c.UserID, c.FirstName, c.LastName, c.Email,
		c.Phone, c.Address, c.Notes, c.CreatedAt, c.UpdatedAt)
}

func TestRepository_Get(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	ctx := context.Background()

	want := types.Customer{
		ID:        uuid.New(),
		TenantID:  uuid.New(),
		FirstName: "Riley",
		LastName:  "Fox",
		Email:     "riley@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	mockPool.ExpectQuery(`SELECT .+ FROM customers WHERE id = \$1`).
		WithArgs(want.ID).
		WillReturnRows(customerRows(want))

	got, err := repo.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "Riley", got.FirstName)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	id := uuid.New()

	mockPool.ExpectQuery(`SELECT .+ FROM customers WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	tenantID := uuid.New()

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(42))

	c := types.Customer{
		ID:        uuid.New(),
		TenantID:  tenantID,
		FirstName: "Sam",
		LastName:  "Diaz",
		Email:     "sam@example.com",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	mockPool.ExpectQuery(`SELECT .+ FROM customers\s+WHERE tenant_id = \$1`).
		WithArgs(tenantID, 20, 0).
		WillReturnRows(customerRows(c))

	customers, total, err := repo.List(context.Background(), tenantID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.Len(t, customers, 1)
	assert.Equal(t, "Diaz", customers[0].LastName)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	id := uuid.New()

	mockPool.ExpectExec(`DELETE FROM customers WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
