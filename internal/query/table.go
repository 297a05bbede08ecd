// Package query loads a summary table into an in-memory SQLite database to
// select rows by column value and look up single cells.
package query

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

var (
	// ErrNoMatch is returned by Lookup when no row matches.
	ErrNoMatch = errors.New("no row matches")

	// ErrAmbiguous is returned by Lookup when more than one row matches.
	ErrAmbiguous = errors.New("more than one row matches")

	// ErrUnknownColumn is returned for a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
)

const tableName = "summary"

// Condition selects rows whose Column equals Value, compared as text.
type Condition struct {
	Column string
	Value  string
}

// ParseCondition parses "column=value".
func ParseCondition(s string) (Condition, error) {
	column, value, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return Condition{}, fmt.Errorf("invalid condition %q: want column=value", s)
	}
	return Condition{Column: column, Value: value}, nil
}

// Table is a summary table held in an in-memory database.
type Table struct {
	db      *sql.DB
	columns []string
	index   map[string]bool
}

// Load reads the delimited table at path.
func Load(ctx context.Context, path string, sep rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()
	return Read(ctx, f, sep)
}

// Read reads a delimited table from r. A trailing empty column, produced
// by rows that end with the separator, is dropped.
func Read(ctx context.Context, r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("reading table: missing header")
	}

	header := trimTrailing(records[0])
	if len(header) == 0 {
		return nil, errors.New("reading table: empty header")
	}

	t := &Table{columns: header, index: make(map[string]bool, len(header))}
	for _, c := range header {
		if t.index[c] {
			return nil, fmt.Errorf("reading table: duplicate column %q", c)
		}
		t.index[c] = true
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	t.db = db

	if err := t.insert(ctx, records[1:]); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *Table) insert(ctx context.Context, rows [][]string) error {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf("CREATE TABLE %s (__row INTEGER PRIMARY KEY, %s)", tableName, strings.Join(defs, ", "))
	if _, err := t.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, t.columnList(t.columns), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		row = trimTrailing(row)
		if len(row) > len(t.columns) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+2, len(row), len(t.columns))
		}
		args := make([]any, len(t.columns))
		for j := range args {
			if j < len(row) {
				args[j] = row[j]
			} else {
				args[j] = ""
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+2, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rows: %w", err)
	}
	return nil
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Close releases the database.
func (t *Table) Close() error {
	return t.db.Close()
}

// Filter returns the header followed by every row matching all conditions,
// in table order. No conditions selects every row.
func (t *Table) Filter(ctx context.Context, conds []Condition) ([][]string, error) {
	where, args, err := t.where(conds)
	if err != nil {
		return nil, err
	}

	rows, err := t.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s%s ORDER BY __row", t.columnList(t.columns), tableName, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	out := [][]string{t.Columns()}
	for rows.Next() {
		values := make([]string, len(t.columns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// Lookup returns the value of column in the single row matching conds.
func (t *Table) Lookup(ctx context.Context, conds []Condition, column string) (string, error) {
	if !t.index[column] {
		return "", fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	where, args, err := t.where(conds)
	if err != nil {
		return "", err
	}

	rows, err := t.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s%s LIMIT 2", quoteIdent(column), tableName, where), args...)
	if err != nil {
		return "", fmt.Errorf("failed to query value: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate rows: %w", err)
	}

	switch len(values) {
	case 0:
		return "", ErrNoMatch
	case 1:
		return values[0], nil
	default:
		return "", ErrAmbiguous
	}
}

func (t *Table) where(conds []Condition) (string, []any, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, len(conds))
	args := make([]any, len(conds))
	for i, c := range conds {
		if !t.index[c.Column] {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c.Column)
		}
		clauses[i] = quoteIdent(c.Column) + " = ?"
		args[i] = c.Value
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (t *Table) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// Write renders rows with sep, each row ending with the separator.
func Write(w io.Writer, rows [][]string, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	for _, row := range rows {
		if err := cw.Write(append(append([]string(nil), row...), "")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func trimTrailing(record []string) []string {
	if n := len(record); n > 0 && record[n-1] == "" {
		return record[:n-1]
	}
	return record
}
