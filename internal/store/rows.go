package store

// Rows is an ordered list of row positions into a Store. A published Rows
// value is shared between filter levels and must not be modified.
type Rows []int

// All returns the identity subset for a store with n rows.
func All(n int) Rows {
	rows := make(Rows, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Len returns the number of rows in the subset.
func (r Rows) Len() int { return len(r) }

// Slice returns the positions in [start, end), clamped to the subset.
func (r Rows) Slice(start, end int) Rows {
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return nil
	}
	return r[start:end]
}
