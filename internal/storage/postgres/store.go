// Package postgres implements the store contracts on PostgreSQL. All methods
// run inside a caller-owned, tenant-bound transaction; row-level security
// scopes every statement to the active tenant.
package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

// Store implements storage.Store backed by PostgreSQL.
type Store struct{}

var _ storage.Store = (*Store)(nil)

// New creates a Store.
func New() *Store {
	return &Store{}
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapError translates driver failures with a known domain meaning and leaves
// everything else untouched for the caller.
func mapError(err error, name string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return svcerrors.NameDuplicated(name, err)
		case pqForeignKeyViolation:
			return svcerrors.Constraint("The resource has related records.", err)
		}
	}
	return err
}

// notFound maps sql.ErrNoRows to the domain NotFound error.
func notFound(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return svcerrors.NotFound(resource)
	}
	return err
}
