// Package core is the headless side of tv: load a file, then narrow, sort
// and summarize it without a terminal.
package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/oakwood-commons/tv/internal/config"
	"github.com/oakwood-commons/tv/internal/filter"
	"github.com/oakwood-commons/tv/internal/limiter"
	"github.com/oakwood-commons/tv/internal/loader"
	"github.com/oakwood-commons/tv/internal/store"
)

// ErrUnknownColumn is returned when a query names a column the file lacks.
var ErrUnknownColumn = errors.New("unknown column")

// Table is a loaded file narrowed to a subset of its rows. Queries return a
// new Table sharing the same column store; the receiver is never modified.
type Table struct {
	store *store.Store
	rows  store.Rows
	info  store.FileInfo
}

// Option configures LoadFile.
type Option func(*loader.Options)

// WithMaxFileSize rejects files larger than n bytes; 0 disables the check.
func WithMaxFileSize(n int64) Option {
	return func(o *loader.Options) {
		o.MaxFileSize = n
	}
}

// WithMaxRows rejects files with more than n rows; 0 disables the check.
func WithMaxRows(n int) Option {
	return func(o *loader.Options) {
		o.MaxRows = n
	}
}

// WithWindow keeps only part of the file. limit and tail are mutually
// exclusive.
func WithWindow(offset, limit, tail int) Option {
	return func(o *loader.Options) {
		o.Window = limiter.Config{Offset: offset, Limit: limit, Tail: tail}
	}
}

// WithWorkers caps the number of columns decoded concurrently.
func WithWorkers(n int) Option {
	return func(o *loader.Options) {
		o.Workers = n
	}
}

// LoadFile reads a CSV, TSV, Parquet or Arrow file. Limits default to the
// CLI defaults.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Table, error) {
	lo := loader.Options{}
	if cfg, err := config.Default(); err == nil {
		lo.MaxFileSize = cfg.Limits.MaxFileSize
		lo.MaxRows = cfg.Limits.MaxRows
		lo.Workers = cfg.Limits.Workers
	}
	for _, opt := range opts {
		opt(&lo)
	}
	res, err := loader.Load(ctx, path, lo)
	if err != nil {
		return nil, err
	}
	return &Table{store: res.Store, rows: store.All(res.Store.NumRows()), info: res.Info}, nil
}

func (t *Table) derive(rows store.Rows) *Table {
	return &Table{store: t.store, rows: rows, info: t.info}
}

// Name is the file name shown as the viewer title.
func (t *Table) Name() string { return t.info.Name() }

// Columns returns the column names in file order.
func (t *Table) Columns() []string { return t.store.Names() }

// Len is the number of rows in the subset.
func (t *Table) Len() int { return t.rows.Len() }

// Row returns the rendered cells of the i-th row of the subset.
func (t *Table) Row(i int) []string { return t.store.Row(t.rows[i]) }

// OriginalRow maps the i-th row of the subset back to its row in the file.
func (t *Table) OriginalRow(i int) int { return t.rows[i] }

func (t *Table) column(name string) (int, error) {
	i, ok := t.store.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return i, nil
}

// Where keeps the rows for which expr, a boolean expression over the column
// names, is true.
func (t *Table) Where(expr string) (*Table, error) {
	p, err := filter.NewExpression(t.store, expr)
	if err != nil {
		return nil, err
	}
	return t.derive(filter.Apply(t.store, t.rows, p)), nil
}

// Contains keeps the rows whose column contains term.
func (t *Table) Contains(column, term string, ignoreCase bool) (*Table, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}
	return t.derive(filter.Apply(t.store, t.rows, filter.NewSubstring(col, column, term, ignoreCase))), nil
}

// Match keeps the rows whose column matches the regular expression pattern.
func (t *Table) Match(column, pattern string) (*Table, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}
	p, err := filter.NewRegex(col, column, pattern)
	if err != nil {
		return nil, err
	}
	return t.derive(filter.Apply(t.store, t.rows, p)), nil
}

// Sort orders the subset by column. The sort is stable.
func (t *Table) Sort(column string, ascending bool) (*Table, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}
	return t.derive(filter.Sort(t.store, t.rows, col, ascending)), nil
}

// Bucket counts the rows sharing one value.
type Bucket struct {
	Value string
	Count int
}

// Histogram counts the distinct values of column, most frequent first.
func (t *Table) Histogram(column string) ([]Bucket, error) {
	col, err := t.column(column)
	if err != nil {
		return nil, err
	}
	hist := filter.Histogram(t.store, t.rows, col)
	out := make([]Bucket, len(hist))
	for i, b := range hist {
		out[i] = Bucket{Value: b.Value, Count: b.Count}
	}
	return out, nil
}

// WriteCSV writes the header and every row of the subset as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for i := range t.Len() {
		if err := cw.Write(t.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
