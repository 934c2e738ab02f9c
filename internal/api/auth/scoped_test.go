package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScopedDB(t *testing.T) (*UserScopedDB, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewUserScopedDB(mockPool), mockPool
}

func TestWithUser_AppliesScopeAndCommits(t *testing.T) {
	scoped, mockPool := newScopedDB(t)

	mockPool.ExpectBegin()
	mockPool.ExpectExec(`SELECT set_config\('app\.user_id', \$1, true\), set_config\('app\.tenant_id', \$2, true\)`).
		WithArgs("user-1", "tenant-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mockPool.ExpectQuery(`SELECT id FROM customers`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("c1"))
	mockPool.ExpectCommit()

	var got string
	err := scoped.WithUser(context.Background(), "user-1", "tenant-1", func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), "SELECT id FROM customers").Scan(&got)
	})

	require.NoError(t, err)
	assert.Equal(t, "c1", got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestWithUser_FnErrorRollsBack(t *testing.T) {
	scoped, mockPool := newScopedDB(t)

	mockPool.ExpectBegin()
	mockPool.ExpectExec(`SELECT set_config`).
		WithArgs("user-1", "tenant-1").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mockPool.ExpectRollback()

	wantErr := errors.New("scan failed")
	err := scoped.WithUser(context.Background(), "user-1", "tenant-1", func(pgx.Tx) error {
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestWithUser_ScopeFailureStopsFn(t *testing.T) {
	scoped, mockPool := newScopedDB(t)

	mockPool.ExpectBegin()
	mockPool.ExpectExec(`SELECT set_config`).
		WithArgs("user-1", "tenant-1").
		WillReturnError(errors.New("permission denied"))
	mockPool.ExpectRollback()

	ran := false
	err := scoped.WithUser(context.Background(), "user-1", "tenant-1", func(pgx.Tx) error {
		ran = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, ran, "fn must not run when the scope settings fail")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
