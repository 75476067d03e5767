package neon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/launchpad/core/db"
)

// Queries adapts a pgx connection pool to the db.Querier interface so the
// application can operate on tables without knowing which backend serves
// them. Identifiers are sanitized through pgx.Identifier and values are
// always passed as positional arguments.
type Queries struct {
	pool *pgxpool.Pool
}

var _ db.Querier = (*Queries)(nil)

// NewQuerier wraps an established connection pool.
func NewQuerier(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

func (q *Queries) Select(ctx context.Context, table string, filters ...db.Filter) ([]db.Row, error) {
	query, args := buildSelect(table, filters)
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(db.ErrQueryFailed, err)
	}
	defer rows.Close()
	return collectRows(rows)
}

func (q *Queries) Insert(ctx context.Context, table string, row db.Row) (db.Row, error) {
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: empty row", db.ErrQueryFailed)
	}
	query, args := buildInsert(table, row)
	return q.one(ctx, query, args)
}

func (q *Queries) Update(ctx context.Context, table string, filter db.Filter, changes db.Row) (db.Row, error) {
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: empty changeset", db.ErrQueryFailed)
	}
	query, args := buildUpdate(table, filter, changes)
	return q.one(ctx, query, args)
}

func (q *Queries) Delete(ctx context.Context, table string, filter db.Filter) error {
	query, args := buildDelete(table, filter)
	if _, err := q.pool.Exec(ctx, query, args...); err != nil {
		return errors.Join(db.ErrQueryFailed, err)
	}
	return nil
}

func (q *Queries) Healthcheck(ctx context.Context) error {
	if err := q.pool.Ping(ctx); err != nil {
		return errors.Join(db.ErrHealthcheckFailed, err)
	}
	return nil
}

// one executes a statement expected to return exactly one row.
func (q *Queries) one(ctx context.Context, query string, args []any) (db.Row, error) {
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(db.ErrQueryFailed, err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, db.ErrNotFound
	}
	return result[0], nil
}

// collectRows decodes the remaining rows into the generic map form.
func collectRows(rows pgx.Rows) ([]db.Row, error) {
	var result []db.Row
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Join(db.ErrQueryFailed, err)
		}
		row := make(db.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(db.ErrQueryFailed, err)
	}
	return result, nil
}

func buildSelect(table string, filters []db.Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pgx.Identifier{table}.Sanitize())

	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s = $%d", pgx.Identifier{f.Column}.Sanitize(), len(args))
	}
	return sb.String(), args
}

func buildInsert(table string, row db.Row) (string, []any) {
	columns := sortedColumns(row)

	cols := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		cols[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

func buildUpdate(table string, filter db.Filter, changes db.Row) (string, []any) {
	columns := sortedColumns(changes)

	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, c := range columns {
		args = append(args, changes[c])
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{c}.Sanitize(), len(args))
	}
	args = append(args, filter.Value)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(sets, ", "),
		pgx.Identifier{filter.Column}.Sanitize(),
		len(args),
	)
	return query, args
}

func buildDelete(table string, filter db.Filter) (string, []any) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{filter.Column}.Sanitize(),
	)
	return query, []any{filter.Value}
}

// sortedColumns gives deterministic statement text for map-backed rows.
func sortedColumns(row db.Row) []string {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}
