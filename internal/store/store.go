// Package store holds the immutable, column-oriented data that every view projects from.
package store

import (
	"fmt"
	"path/filepath"
	"time"
)

// Format identifies the on-disk encoding of a data file.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatParquet
	FormatArrow
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	case FormatArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// Compression identifies a whole-file compression wrapper.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// FileInfo describes where a Store came from.
type FileInfo struct {
	Path         string        `json:"path" yaml:"path"`
	Size         int64         `json:"size" yaml:"size"`
	Format       Format        `json:"-" yaml:"-"`
	Compression  Compression   `json:"-" yaml:"-"`
	Rows         int           `json:"rows" yaml:"rows"`
	TotalRows    int           `json:"total_rows" yaml:"total_rows"`
	FirstRow     int           `json:"first_row" yaml:"first_row"`
	Columns      int           `json:"columns" yaml:"columns"`
	LoadDuration time.Duration `json:"load_duration" yaml:"load_duration"`
}

// Name returns the base file name used in view titles.
func (f FileInfo) Name() string {
	if f.Path == "" {
		return ""
	}
	return filepath.Base(f.Path)
}

// Store is a set of equally long columns. It is built once per load and never mutated.
type Store struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New validates that all columns have the same length and builds a Store.
func New(columns []*Column) (*Store, error) {
	s := &Store{columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if i == 0 {
			s.rows = c.Len()
		} else if c.Len() != s.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), s.rows)
		}
		if _, dup := s.index[c.Name]; !dup {
			s.index[c.Name] = i
		}
	}
	return s, nil
}

// NumRows returns the number of rows; a nil Store has none.
func (s *Store) NumRows() int {
	if s == nil {
		return 0
	}
	return s.rows
}

// NumColumns returns the number of columns; a nil Store has none.
func (s *Store) NumColumns() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Column returns the column at position i.
func (s *Store) Column(i int) *Column { return s.columns[i] }

// Columns returns all columns in file order.
func (s *Store) Columns() []*Column { return s.columns }

// Names returns the column names in file order.
func (s *Store) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the position of the first column with the given name.
func (s *Store) Lookup(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[name]
	return i, ok
}

// Cell returns the display string at (col, row).
func (s *Store) Cell(col, row int) string {
	return s.columns[col].Values[row]
}

// Row returns every display string of a row in column order.
func (s *Store) Row(row int) []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Values[row]
	}
	return out
}

// RawCell is Cell with missing values as the empty string instead of NullMarker.
func (s *Store) RawCell(col, row int) string {
	if s.columns[col].IsNull(row) {
		return ""
	}
	return s.columns[col].Values[row]
}

// RawRow is Row with missing values as empty strings.
func (s *Store) RawRow(row int) []string {
	out := make([]string, len(s.columns))
	for i := range s.columns {
		out[i] = s.RawCell(i, row)
	}
	return out
}
