package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/errors"
)

// Sessions opens tenant-scoped transactions. Every statement executed inside
// an opened transaction is filtered by the row-level-security policies bound
// to the tenant set here.
type Sessions struct {
	db *sql.DB
}

// NewSessions wraps the pooled database handle.
func NewSessions(db *sql.DB) *Sessions {
	return &Sessions{db: db}
}

// Open begins a transaction and binds the active tenant for the
// row-level-security policies. The caller owns the transaction: it must
// commit on success and roll back on every other path. Failures here are
// never retried; the caller decides retry policy.
func (s *Sessions) Open(ctx context.Context, tenant uuid.UUID) (*sql.Tx, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, errors.ServiceUnavailable("", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.ServiceUnavailable("", err)
	}

	// set_config with is_local=true scopes the binding to this transaction.
	if _, err := tx.ExecContext(ctx, `SELECT set_config('app.current_tenant', $1, true)`, tenant.String()); err != nil {
		_ = tx.Rollback()
		return nil, errors.ServiceUnavailable("", err)
	}

	return tx, nil
}
