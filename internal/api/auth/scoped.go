package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is the subset of pgxpool.Pool needed to open a transaction.
// pgxmock satisfies it, which keeps scope tests off a live database.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserScopedDB runs statements as the end user rather than the service
// role. Row-level-security policies read app.user_id / app.tenant_id, so
// queries inside the scope are constrained by the store's own per-row
// rules instead of application-side checks. Use it when an operation must
// defer to RLS (customer portal reads); the service-role pool is used only
// after an explicit role check.
type UserScopedDB struct {
	db TxBeginner
}

func NewUserScopedDB(db TxBeginner) *UserScopedDB {
	return &UserScopedDB{db: db}
}

// WithUser executes fn inside a transaction whose session settings carry
// the caller's identity. set_config with is_local=true scopes the settings
// to the transaction, so pooled connections never leak identity.
func (s *UserScopedDB) WithUser(ctx context.Context, userID, tenantID string, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin user-scoped tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`SELECT set_config('app.user_id', $1, true), set_config('app.tenant_id', $2, true)`,
		userID, tenantID)
	if err != nil {
		return fmt.Errorf("apply user scope: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
