package store

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	// NullMarker is shown in place of a missing value.
	NullMarker = "∅"
	// NewlineMarker replaces embedded line breaks so every cell stays on one line.
	NewlineMarker = " ↵ "
)

// Kind is the logical type of a column's values.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTemporal:
		return "temporal"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind sort and compare as numbers.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is one named, fully materialized column of display strings.
// A Column is never modified after it has been built.
type Column struct {
	Name     string
	Kind     Kind
	Values   []string
	nulls    []bool
	maxWidth int
}

// NewColumn builds a column from normalized display strings. nulls may be nil
// when the column has no missing values; otherwise it must match values in length.
func NewColumn(name string, kind Kind, values []string, nulls []bool) *Column {
	c := &Column{Name: name, Kind: kind, Values: values}
	for _, null := range nulls {
		if null {
			c.nulls = nulls
			break
		}
	}
	for _, v := range values {
		if w := runewidth.StringWidth(v); w > c.maxWidth {
			c.maxWidth = w
		}
	}
	return c
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Values) }

// MaxWidth returns the display width of the widest value.
func (c *Column) MaxWidth() int { return c.maxWidth }

// IsNull reports whether the value at row was missing in the source.
func (c *Column) IsNull(row int) bool {
	return c.nulls != nil && c.nulls[row]
}

// HasNulls reports whether any value is missing.
func (c *Column) HasNulls() bool { return c.nulls != nil }

// Normalize flattens line breaks so a value renders on a single line.
func Normalize(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", NewlineMarker)
	s = strings.ReplaceAll(s, "\n", NewlineMarker)
	return strings.ReplaceAll(s, "\r", NewlineMarker)
}

// InferKind picks the narrowest kind every non-null value parses as.
// Columns with no non-null values are strings.
func InferKind(values []string, nulls []bool) Kind {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for i, v := range values {
		if nulls != nil && nulls[i] {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(v); err != nil || len(v) == 1 {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return KindString
		}
	}
	switch {
	case !seen:
		return KindString
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isBool:
		return KindBool
	}
	return KindString
}
