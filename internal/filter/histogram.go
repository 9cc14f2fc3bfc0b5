package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/oakwood-commons/tv/internal/store"
)

// Bucket counts the rows sharing one rendered value.
type Bucket struct {
	Value string
	Count int
}

// Histogram buckets identical values of column over rows, ordered by
// descending count with ties in first-seen order.
func Histogram(s *store.Store, rows store.Rows, column int) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket
	for _, row := range rows {
		v := s.Cell(column, row)
		if i, ok := index[v]; ok {
			buckets[i].Count++
			continue
		}
		index[v] = len(buckets)
		buckets = append(buckets, Bucket{Value: v, Count: 1})
	}
	slices.SortStableFunc(buckets, func(a, b Bucket) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return buckets
}

// SortStep records an ordering pushed onto the filter stack.
type SortStep struct {
	Column    int
	Name      string
	Ascending bool
}

func (s SortStep) String() string {
	if s.Ascending {
		return fmt.Sprintf("sort %s asc", s.Name)
	}
	return fmt.Sprintf("sort %s desc", s.Name)
}

// Sort returns a stable reordering of rows by column. Numeric columns compare
// as numbers and values that do not parse (including nulls) sort last in
// either direction; other columns compare as strings.
func Sort(s *store.Store, rows store.Rows, column int, ascending bool) store.Rows {
	out := slices.Clone(rows)
	c := s.Column(column)

	dir := 1
	if !ascending {
		dir = -1
	}
	if !c.Kind.Numeric() {
		slices.SortStableFunc(out, func(a, b int) int {
			return dir * cmp.Compare(c.Values[a], c.Values[b])
		})
		return out
	}

	keys := make(map[int]float64, len(out))
	for _, row := range out {
		if c.IsNull(row) {
			continue
		}
		if f, err := strconv.ParseFloat(c.Values[row], 64); err == nil {
			keys[row] = f
		}
	}
	slices.SortStableFunc(out, func(a, b int) int {
		ka, okA := keys[a]
		kb, okB := keys[b]
		switch {
		case okA && okB:
			return dir * cmp.Compare(ka, kb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return out
}
