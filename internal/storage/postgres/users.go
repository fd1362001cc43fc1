package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/LVRodrigues/fpa-management/internal/auth"
)

// RegisterUser upserts the authenticated principal. Called once per request
// after the gate builds the identity; the first request of a user creates
// the row, later ones refresh name and email from the token claims.
func (s *Store) RegisterUser(ctx context.Context, tx *sql.Tx, ident auth.Context) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (user_id, tenant_id, name, email, time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email
	`, ident.ID, ident.Tenant, ident.Name, ident.Email, time.Now().UTC())
	return err
}
