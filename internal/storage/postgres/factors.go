package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
)

func (s *Store) ListFactors(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Page[fpa.Factor], error) {
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT frontier_id, factor, influence
		FROM factors
		WHERE frontier_id = $1
		ORDER BY factor
	`, frontier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	page := fpa.NewPage[fpa.Factor]()
	for rows.Next() {
		var item fpa.Factor
		if err := rows.Scan(&item.Frontier, &item.Factor, &item.Influence); err != nil {
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

func (s *Store) UpdateFactor(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, factor fpa.FactorType, influence fpa.InfluenceType) (*fpa.Factor, error) {
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE factors
		SET influence = $3
		WHERE frontier_id = $1 AND factor = $2
	`, frontier, factor, influence)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, svcerrors.NotFound("factor")
	}

	return &fpa.Factor{Frontier: frontier, Factor: factor, Influence: influence}, nil
}
