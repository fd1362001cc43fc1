package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/auth"
	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

func (s *Store) ListFrontiers(ctx context.Context, tx *sql.Tx, project uuid.UUID, query storage.PageQuery) (*fpa.Page[fpa.Frontier], error) {
	query = query.Normalize()

	var records uint64
	err := tx.QueryRowContext(ctx, `
		SELECT count(*) FROM frontiers
		WHERE project_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
	`, project, query.Name).Scan(&records)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT frontier_id, project_id, name, description, time
		FROM frontiers
		WHERE project_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT $3 OFFSET $4
	`, project, query.Name, query.Size, query.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := fpa.NewPage[fpa.Frontier]()
	for rows.Next() {
		var item fpa.Frontier
		if err := rows.Scan(&item.ID, &item.Project, &item.Name, &item.Description, &item.Time); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fill(page, query, records)
	return page, nil
}

func (s *Store) FrontierByID(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Frontier, error) {
	var item fpa.Frontier
	err := tx.QueryRowContext(ctx, `
		SELECT frontier_id, project_id, name, description, time
		FROM frontiers
		WHERE project_id = $1 AND frontier_id = $2
	`, project, frontier).Scan(&item.ID, &item.Project, &item.Name, &item.Description, &item.Time)
	if err != nil {
		return nil, notFound(err, "frontier")
	}
	return &item, nil
}

// CreateFrontier inserts the frontier and seeds its fourteen adjustment
// factors and five empirical values with their defaults.
func (s *Store) CreateFrontier(ctx context.Context, tx *sql.Tx, ident auth.Context, project uuid.UUID, name string, description *string) (*fpa.Frontier, error) {
	if _, err := s.ProjectByID(ctx, tx, project); err != nil {
		return nil, err
	}

	item := fpa.Frontier{
		ID:          uuid.Must(uuid.NewV7()),
		Project:     project,
		Name:        name,
		Description: description,
		Time:        time.Now().UTC(),
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO frontiers (frontier_id, project_id, tenant_id, name, description, time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.Project, ident.Tenant, item.Name, item.Description, item.Time)
	if err != nil {
		return nil, mapError(err, name)
	}

	for _, factor := range fpa.FactorTypes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO factors (frontier_id, tenant_id, factor, influence)
			VALUES ($1, $2, $3, $4)
		`, item.ID, ident.Tenant, factor, fpa.InfluenceAbsent)
		if err != nil {
			return nil, mapError(err, string(factor))
		}
	}

	for _, empirical := range fpa.EmpiricalTypes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO empiricals (frontier_id, tenant_id, empirical, value)
			VALUES ($1, $2, $3, $4)
		`, item.ID, ident.Tenant, empirical, fpa.DefaultEmpiricalValues[empirical])
		if err != nil {
			return nil, mapError(err, string(empirical))
		}
	}

	return &item, nil
}

func (s *Store) UpdateFrontier(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, name string, description *string) (*fpa.Frontier, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE frontiers
		SET name = $3, description = $4
		WHERE project_id = $1 AND frontier_id = $2
	`, project, frontier, name, description)
	if err != nil {
		return nil, mapError(err, name)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, svcerrors.NotFound("frontier")
	}
	return s.FrontierByID(ctx, tx, project, frontier)
}

// RemoveFrontier deletes the frontier and its seeded factors and empiricals.
// Functions still attached block the delete through their foreign keys.
func (s *Store) RemoveFrontier(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) error {
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM frontiers WHERE project_id = $1 AND frontier_id = $2
	`, project, frontier)
	if err != nil {
		return mapError(err, "")
	}
	if rows, _ := result.RowsAffected(); rows != 1 {
		return svcerrors.NotFound("frontier")
	}
	return nil
}
