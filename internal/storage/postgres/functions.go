package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/auth"
	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
	svcerrors "github.com/LVRodrigues/fpa-management/internal/errors"
	"github.com/LVRodrigues/fpa-management/internal/storage"
)

// header is one row of either function header table.
type header struct {
	ID          uuid.UUID
	Frontier    uuid.UUID
	Tenant      uuid.UUID
	Type        fpa.FunctionType
	Name        string
	Description *string
}

// headerUnion selects over both header tables. The frontier join guards the
// project/frontier path the caller addressed.
const headerUnion = `
	SELECT h.function_id, h.frontier_id, h.tenant_id, h.type, h.name, h.description
	FROM (
		SELECT function_id, frontier_id, tenant_id, type, name, description FROM functions_data
		UNION ALL
		SELECT function_id, frontier_id, tenant_id, type, name, description FROM functions_transactions
	) h
	JOIN frontiers f ON f.frontier_id = h.frontier_id
	WHERE f.project_id = $1 AND h.frontier_id = $2`

func (s *Store) ListFunctions(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, query storage.PageQuery) (*fpa.Page[fpa.TaggedFunction], error) {
	query = query.Normalize()
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	var records uint64
	err := tx.QueryRowContext(ctx, `
		SELECT count(*) FROM (`+headerUnion+`
			AND ($3 = '' OR h.name ILIKE '%' || $3 || '%')
			AND ($4 = '' OR h.type = $4)
		) c
	`, project, frontier, query.Name, string(query.Type)).Scan(&records)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, headerUnion+`
		AND ($3 = '' OR h.name ILIKE '%' || $3 || '%')
		AND ($4 = '' OR h.type = $4)
		ORDER BY h.name
		LIMIT $5 OFFSET $6
	`, project, frontier, query.Name, string(query.Type), query.Size, query.Offset())
	if err != nil {
		return nil, err
	}

	headers, err := scanHeaders(rows)
	if err != nil {
		return nil, err
	}

	page := fpa.NewPage[fpa.TaggedFunction]()
	for _, h := range headers {
		function, err := s.assemble(ctx, tx, h)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, fpa.Tagged(function))
	}

	fill(page, query, records)
	return page, nil
}

func (s *Store) FunctionByID(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID) (fpa.Function, error) {
	h, err := s.functionHeader(ctx, tx, project, frontier, function)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, tx, *h)
}

func (s *Store) functionHeader(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID) (*header, error) {
	var h header
	var kind string
	err := tx.QueryRowContext(ctx, headerUnion+` AND h.function_id = $3`,
		project, frontier, function,
	).Scan(&h.ID, &h.Frontier, &h.Tenant, &kind, &h.Name, &h.Description)
	if err != nil {
		return nil, notFound(err, "function")
	}

	t, err := fpa.ParseFunctionType(kind)
	if err != nil {
		return nil, svcerrors.Internal("", err)
	}
	h.Type = t
	return &h, nil
}

// assemble nests the variant-specific children under the header row: record
// layouts with their elements for data functions, resolved data-function
// references for transactional ones.
func (s *Store) assemble(ctx context.Context, tx *sql.Tx, h header) (fpa.Function, error) {
	function := fpa.NewFunction(h.Type, h.ID, h.Name, h.Description)

	switch f := function.(type) {
	case *fpa.ALI:
		rlrs, err := s.loadLayouts(ctx, tx, h.ID)
		if err != nil {
			return nil, err
		}
		f.RLRs = rlrs
	case *fpa.AIE:
		rlrs, err := s.loadLayouts(ctx, tx, h.ID)
		if err != nil {
			return nil, err
		}
		f.RLRs = rlrs
	case *fpa.EE:
		alrs, err := s.loadReferences(ctx, tx, h.ID)
		if err != nil {
			return nil, err
		}
		f.ALRs = alrs
	case *fpa.CE:
		alrs, err := s.loadReferences(ctx, tx, h.ID)
		if err != nil {
			return nil, err
		}
		f.ALRs = alrs
	case *fpa.SE:
		alrs, err := s.loadReferences(ctx, tx, h.ID)
		if err != nil {
			return nil, err
		}
		f.ALRs = alrs
	}

	return function, nil
}

// loadLayouts reads the record layouts of a data function with their data
// elements nested. Layouts are collected before their elements are queried:
// the shared transaction cannot serve a query while a result set is open.
func (s *Store) loadLayouts(ctx context.Context, tx *sql.Tx, function uuid.UUID) ([]fpa.RLR, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT name, description
		FROM record_layouts
		WHERE function_id = $1
		ORDER BY name
	`, function)
	if err != nil {
		return nil, err
	}

	layouts := []fpa.RLR{}
	for rows.Next() {
		var rlr fpa.RLR
		if err := rows.Scan(&rlr.Name, &rlr.Description); err != nil {
			rows.Close()
			return nil, err
		}
		layouts = append(layouts, rlr)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	for i := range layouts {
		elements, err := s.loadElements(ctx, tx, function, layouts[i].Name)
		if err != nil {
			return nil, err
		}
		layouts[i].DERs = elements
	}

	return layouts, nil
}

func (s *Store) loadElements(ctx context.Context, tx *sql.Tx, function uuid.UUID, layout string) ([]fpa.DER, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT name, description
		FROM data_elements
		WHERE function_id = $1 AND record_layout_name = $2
		ORDER BY name
	`, function, layout)
	if err != nil {
		return nil, err
	}

	elements := []fpa.DER{}
	for rows.Next() {
		var der fpa.DER
		if err := rows.Scan(&der.Name, &der.Description); err != nil {
			rows.Close()
			return nil, err
		}
		elements = append(elements, der)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return elements, nil
}

// loadReferences resolves the cross-reference rows of a transactional
// function into assembled data functions. A reference whose target is not a
// data function is a data-integrity violation and is surfaced, never skipped.
func (s *Store) loadReferences(ctx context.Context, tx *sql.Tx, function uuid.UUID) ([]fpa.DataFunction, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT referenced_function_id
		FROM data_function_refs
		WHERE function_id = $1
		ORDER BY referenced_function_id
	`, function)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	references := []fpa.DataFunction{}
	for _, id := range ids {
		h, err := s.dataHeader(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		assembled, err := s.assemble(ctx, tx, *h)
		if err != nil {
			return nil, err
		}
		data, ok := assembled.(fpa.DataFunction)
		if !ok {
			return nil, svcerrors.TypeMismatch("The referenced function is not a data function.")
		}
		references = append(references, data)
	}

	return references, nil
}

// dataHeader fetches the header of a referenced function, requiring it to be
// a data function.
func (s *Store) dataHeader(ctx context.Context, tx *sql.Tx, function uuid.UUID) (*header, error) {
	var h header
	var kind string
	err := tx.QueryRowContext(ctx, `
		SELECT function_id, frontier_id, tenant_id, type, name, description
		FROM functions_data
		WHERE function_id = $1
	`, function).Scan(&h.ID, &h.Frontier, &h.Tenant, &kind, &h.Name, &h.Description)
	if err == nil {
		t, perr := fpa.ParseFunctionType(kind)
		if perr != nil {
			return nil, svcerrors.Internal("", perr)
		}
		h.Type = t
		return &h, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	// Not in the data table: a reference to a transactional function is a
	// surfaced integrity error, anything else is a dangling reference.
	var exists bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM functions_transactions WHERE function_id = $1)
	`, function).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, svcerrors.TypeMismatch("The referenced function is not a data function.").
			WithDetails("function", function.String())
	}
	return nil, svcerrors.NotFound("referenced function")
}

// CreateFunction inserts the header row with a fresh identifier and
// decomposes the payload into the child tables of its variant. The result is
// re-read through the assembly path.
func (s *Store) CreateFunction(ctx context.Context, tx *sql.Tx, ident auth.Context, project, frontier uuid.UUID, param fpa.FunctionParam) (fpa.Function, error) {
	if err := param.Validate(); err != nil {
		return nil, svcerrors.TypeMismatch(err.Error())
	}
	if _, err := s.FrontierByID(ctx, tx, project, frontier); err != nil {
		return nil, err
	}

	id := uuid.Must(uuid.NewV7())
	if param.Type.IsData() {
		if err := s.insertData(ctx, tx, ident.Tenant, frontier, id, param); err != nil {
			return nil, err
		}
	} else {
		if err := s.insertTransaction(ctx, tx, ident.Tenant, frontier, id, param); err != nil {
			return nil, err
		}
	}

	return s.FunctionByID(ctx, tx, project, frontier, id)
}

func (s *Store) insertData(ctx context.Context, tx *sql.Tx, tenant, frontier, function uuid.UUID, param fpa.FunctionParam) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO functions_data (function_id, frontier_id, tenant_id, type, name, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, function, frontier, tenant, string(param.Type), param.Name, param.Description)
	if err != nil {
		return mapError(err, param.Name)
	}
	return s.insertLayouts(ctx, tx, tenant, function, param.RLRs)
}

// insertLayouts writes the record layouts and elements of a payload. A
// duplicate layout or element name within the payload violates the primary
// key and surfaces from the store as a name-duplication error.
func (s *Store) insertLayouts(ctx context.Context, tx *sql.Tx, tenant, function uuid.UUID, rlrs []fpa.RLR) error {
	for _, rlr := range rlrs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO record_layouts (function_id, name, tenant_id, description)
			VALUES ($1, $2, $3, $4)
		`, function, rlr.Name, tenant, rlr.Description)
		if err != nil {
			return mapError(err, rlr.Name)
		}

		for _, der := range rlr.DERs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO data_elements (function_id, record_layout_name, name, tenant_id, description)
				VALUES ($1, $2, $3, $4, $5)
			`, function, rlr.Name, der.Name, tenant, der.Description)
			if err != nil {
				return mapError(err, der.Name)
			}
		}
	}
	return nil
}

func (s *Store) insertTransaction(ctx context.Context, tx *sql.Tx, tenant, frontier, function uuid.UUID, param fpa.FunctionParam) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO functions_transactions (function_id, frontier_id, tenant_id, type, name, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, function, frontier, tenant, string(param.Type), param.Name, param.Description)
	if err != nil {
		return mapError(err, param.Name)
	}
	return s.insertReferences(ctx, tx, tenant, function, param.Refs)
}

// insertReferences writes the cross-reference rows. Each referenced id must
// resolve to a data function; a reference to anything else is rejected here
// instead of waiting for the read path to trip over it.
func (s *Store) insertReferences(ctx context.Context, tx *sql.Tx, tenant, function uuid.UUID, refs []uuid.UUID) error {
	for _, ref := range refs {
		if _, err := s.dataHeader(ctx, tx, ref); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO data_function_refs (function_id, referenced_function_id, tenant_id)
			VALUES ($1, $2, $3)
		`, function, ref, tenant)
		if err != nil {
			return mapError(err, ref.String())
		}
	}
	return nil
}

// UpdateFunction rewrites the header and replaces the child collection
// wholesale: children are deleted and re-inserted from the payload, not
// diffed. The variant tag is immutable; a payload of another variant fails
// before anything is written.
func (s *Store) UpdateFunction(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID, param fpa.FunctionParam) (fpa.Function, error) {
	if err := param.Validate(); err != nil {
		return nil, svcerrors.TypeMismatch(err.Error())
	}

	h, err := s.functionHeader(ctx, tx, project, frontier, function)
	if err != nil {
		return nil, err
	}
	if h.Type != param.Type {
		return nil, svcerrors.TypeMismatch("The function type cannot be updated.").
			WithDetails("stored", string(h.Type)).
			WithDetails("payload", string(param.Type))
	}

	if param.Type.IsData() {
		err = s.updateData(ctx, tx, h.Tenant, function, param)
	} else {
		err = s.updateTransaction(ctx, tx, h.Tenant, function, param)
	}
	if err != nil {
		return nil, err
	}

	return s.FunctionByID(ctx, tx, project, frontier, function)
}

func (s *Store) updateData(ctx context.Context, tx *sql.Tx, tenant, function uuid.UUID, param fpa.FunctionParam) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE functions_data
		SET name = $2, description = $3
		WHERE function_id = $1
	`, function, param.Name, param.Description)
	if err != nil {
		return mapError(err, param.Name)
	}

	// Deleting the layouts cascades to their data elements.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM record_layouts WHERE function_id = $1
	`, function); err != nil {
		return err
	}

	return s.insertLayouts(ctx, tx, tenant, function, param.RLRs)
}

func (s *Store) updateTransaction(ctx context.Context, tx *sql.Tx, tenant, function uuid.UUID, param fpa.FunctionParam) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE functions_transactions
		SET name = $2, description = $3
		WHERE function_id = $1
	`, function, param.Name, param.Description)
	if err != nil {
		return mapError(err, param.Name)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM data_function_refs WHERE function_id = $1
	`, function); err != nil {
		return err
	}

	return s.insertReferences(ctx, tx, tenant, function, param.Refs)
}

// RemoveFunction deletes the function. A data function still referenced by a
// transactional function is refused; otherwise the delete cascades to the
// function's own children.
func (s *Store) RemoveFunction(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID) error {
	h, err := s.functionHeader(ctx, tx, project, frontier, function)
	if err != nil {
		return err
	}

	if h.Type.IsData() {
		var referenced bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM data_function_refs WHERE referenced_function_id = $1)
		`, function).Scan(&referenced); err != nil {
			return err
		}
		if referenced {
			return svcerrors.Constraint("The function is referenced by transactional functions.", nil)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM functions_data WHERE function_id = $1
		`, function)
		if err != nil {
			return mapError(err, "")
		}
		if rows, _ := result.RowsAffected(); rows != 1 {
			return svcerrors.NotFound("function")
		}
		return nil
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM functions_transactions WHERE function_id = $1
	`, function)
	if err != nil {
		return mapError(err, "")
	}
	if rows, _ := result.RowsAffected(); rows != 1 {
		return svcerrors.NotFound("function")
	}
	return nil
}

func scanHeaders(rows *sql.Rows) ([]header, error) {
	headers := []header{}
	for rows.Next() {
		var h header
		var kind string
		if err := rows.Scan(&h.ID, &h.Frontier, &h.Tenant, &kind, &h.Name, &h.Description); err != nil {
			rows.Close()
			return nil, err
		}
		t, err := fpa.ParseFunctionType(kind)
		if err != nil {
			rows.Close()
			return nil, svcerrors.Internal("", err)
		}
		h.Type = t
		headers = append(headers, h)
	}
	return headers, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
