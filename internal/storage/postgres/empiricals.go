package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
)

func (s *Store) ListEmpiricals(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Page[fpa.Empirical], error) {
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT frontier_id, empirical, value
		FROM empiricals
		WHERE frontier_id = $1
		ORDER BY empirical
	`, frontier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := fpa.NewPage[fpa.Empirical]()
	for rows.Next() {
		var item fpa.Empirical
		if err := rows.Scan(&item.Frontier, &item.Empirical, &item.Value); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page.Pages = 1
	page.Index = 1
	page.Size = uint64(len(page.Items))
	page.Records = page.Size
	return page, nil
}

func (s *Store) UpdateEmpirical(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, empirical fpa.EmpiricalType, value int) (*fpa.Empirical, error) {
	if value < 0 || value > 100 {
		return nil, svcerrors.Constraint(fmt.Sprintf("The empirical value %d is outside the range 0 to 100.", value), nil)
	}
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE empiricals
		SET value = $3
		WHERE frontier_id = $1 AND empirical = $2
	`, frontier, empirical, value)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, svcerrors.NotFound("empirical")
	}

	return &fpa.Empirical{Frontier: frontier, Empirical: empirical, Value: value}, nil
}
