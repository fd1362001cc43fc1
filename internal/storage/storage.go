// Package storage defines the store contracts and the tenant-scoped session
// every unit of work runs inside.
package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/auth"
	"github.com/LVRodrigues/fpa-management/internal/domain/fpa"
)

// PageQuery carries pagination and filter parameters for list operations.
type PageQuery struct {
	// Index is the 1-based page index.
	Index uint64
	// Size is the page size, clamped to [1, MaxPageSize].
	Size uint64
	// Name filters records whose name contains the value.
	Name string
	// Type filters functions by variant tag; empty means all.
	Type fpa.FunctionType
}

// MaxPageSize bounds the records returned by one page.
const MaxPageSize = 50

// DefaultPageSize applies when the caller does not name a size.
const DefaultPageSize = 10

// Normalize applies defaults and clamps the page parameters.
func (q PageQuery) Normalize() PageQuery {
	if q.Index < 1 {
		q.Index = 1
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	return q
}

// Offset returns the row offset of the page.
func (q PageQuery) Offset() uint64 {
	return (q.Index - 1) * q.Size
}

// ProjectStore persists projects.
type ProjectStore interface {
	ListProjects(ctx context.Context, tx *sql.Tx, query PageQuery) (*fpa.Page[fpa.Project], error)
	ProjectByID(ctx context.Context, tx *sql.Tx, project uuid.UUID) (*fpa.Project, error)
	CreateProject(ctx context.Context, tx *sql.Tx, ident auth.Context, name string, description *string) (*fpa.Project, error)
	UpdateProject(ctx context.Context, tx *sql.Tx, project uuid.UUID, name string, description *string) (*fpa.Project, error)
	RemoveProject(ctx context.Context, tx *sql.Tx, project uuid.UUID) error
}

// FrontierStore persists frontiers. Creating a frontier seeds its adjustment
// factors and empirical values.
type FrontierStore interface {
	ListFrontiers(ctx context.Context, tx *sql.Tx, project uuid.UUID, query PageQuery) (*fpa.Page[fpa.Frontier], error)
	FrontierByID(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Frontier, error)
	CreateFrontier(ctx context.Context, tx *sql.Tx, ident auth.Context, project uuid.UUID, name string, description *string) (*fpa.Frontier, error)
	UpdateFrontier(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, name string, description *string) (*fpa.Frontier, error)
	RemoveFrontier(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) error
}

// FactorStore reads and adjusts the fourteen factors of a frontier.
type FactorStore interface {
	ListFactors(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Page[fpa.Factor], error)
	UpdateFactor(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, factor fpa.FactorType, influence fpa.InfluenceType) (*fpa.Factor, error)
}

// EmpiricalStore reads and adjusts the five empirical values of a frontier.
type EmpiricalStore interface {
	ListEmpiricals(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID) (*fpa.Page[fpa.Empirical], error)
	UpdateEmpirical(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, empirical fpa.EmpiricalType, value int) (*fpa.Empirical, error)
}

// FunctionStore assembles and persists the polymorphic Function union across
// the data-function and transactional-function tables.
type FunctionStore interface {
	ListFunctions(ctx context.Context, tx *sql.Tx, project, frontier uuid.UUID, query PageQuery) (*fpa.Page[fpa.TaggedFunction], error)
	FunctionByID(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID) (fpa.Function, error)
	CreateFunction(ctx context.Context, tx *sql.Tx, ident auth.Context, project, frontier uuid.UUID, param fpa.FunctionParam) (fpa.Function, error)
	UpdateFunction(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID, param fpa.FunctionParam) (fpa.Function, error)
	RemoveFunction(ctx context.Context, tx *sql.Tx, project, frontier, function uuid.UUID) error
}

// UserStore registers authenticated users.
type UserStore interface {
	RegisterUser(ctx context.Context, tx *sql.Tx, ident auth.Context) error
}

// Store is the full persistence surface consumed by the HTTP layer.
type Store interface {
	ProjectStore
	FrontierStore
	FactorStore
	EmpiricalStore
	FunctionStore
	UserStore
}
