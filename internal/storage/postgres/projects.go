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

func (s *Store) ListProjects(ctx context.Context, tx *sql.Tx, query storage.PageQuery) (*fpa.Page[fpa.Project], error) {
	query = query.Normalize()

	var records uint64
	err := tx.QueryRowContext(ctx, `
		SELECT count(*) FROM projects
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
	`, query.Name).Scan(&records)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT project_id, name, description, time, user_id
		FROM projects
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, query.Name, query.Size, query.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := fpa.NewPage[fpa.Project]()
	for rows.Next() {
		var item fpa.Project
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Time, &item.User); err != nil {
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

func (s *Store) ProjectByID(ctx context.Context, tx *sql.Tx, project uuid.UUID) (*fpa.Project, error) {
	var item fpa.Project
	err := tx.QueryRowContext(ctx, `
		SELECT project_id, name, description, time, user_id
		FROM projects
		WHERE project_id = $1
	`, project).Scan(&item.ID, &item.Name, &item.Description, &item.Time, &item.User)
	if err != nil {
		return nil, notFound(err, "project")
	}
	return &item, nil
}

func (s *Store) CreateProject(ctx context.Context, tx *sql.Tx, ident auth.Context, name string, description *string) (*fpa.Project, error) {
	item := fpa.Project{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		Description: description,
		Time:        time.Now().UTC(),
		User:        ident.ID,
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (project_id, tenant_id, name, description, time, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, ident.Tenant, item.Name, item.Description, item.Time, item.User)
	if err != nil {
		return nil, mapError(err, name)
	}
	return &item, nil
}

func (s *Store) UpdateProject(ctx context.Context, tx *sql.Tx, project uuid.UUID, name string, description *string) (*fpa.Project, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET name = $2, description = $3
		WHERE project_id = $1
	`, project, name, description)
	if err != nil {
		return nil, mapError(err, name)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, svcerrors.NotFound("project")
	}
	return s.ProjectByID(ctx, tx, project)
}

func (s *Store) RemoveProject(ctx context.Context, tx *sql.Tx, project uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM projects WHERE project_id = $1
	`, project)
	if err != nil {
		return mapError(err, "")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return svcerrors.NotFound("project")
	}
	return nil
}

// fill completes the page bookkeeping from the query and total record count.
func fill[T any](page *fpa.Page[T], query storage.PageQuery, records uint64) {
	page.Index = query.Index
	page.Size = uint64(len(page.Items))
	page.Records = records
	page.Pages = (records + query.Size - 1) / query.Size
}
