package db

import "context"

// Row is a single record keyed by column name.
type Row map[string]any

// Filter restricts an operation to rows where Column equals Value.
type Filter struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Querier is the capability interface implemented by every database
// backend. Implementations return the package's sentinel errors wrapped
// with backend detail; native error shapes do not cross this boundary.
type Querier interface {
	// Select returns all rows of table matching every filter.
	Select(ctx context.Context, table string, filters ...Filter) ([]Row, error)

	// Insert stores row and returns the stored representation, including
	// backend-generated columns.
	Insert(ctx context.Context, table string, row Row) (Row, error)

	// Update applies changes to rows matching filter and returns the first
	// updated row, or ErrNotFound when nothing matched.
	Update(ctx context.Context, table string, filter Filter, changes Row) (Row, error)

	// Delete removes rows matching filter.
	Delete(ctx context.Context, table string, filter Filter) error

	// Healthcheck verifies backend connectivity with a lightweight probe.
	Healthcheck(ctx context.Context) error
}
