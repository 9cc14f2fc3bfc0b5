package limiter

import (
	"fmt"
)

// Config selects a window of rows out of a loaded file.
type Config struct {
	Limit  int // Keep only this many rows (0 = unlimited)
	Offset int // Skip the first N rows (0 = no skip)
	Tail   int // Keep only the last N rows (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations and returns an error if invalid.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Range returns the half-open row range [start, end) selected out of total rows.
func (c Config) Range(total int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	if c.Tail > 0 {
		start = total - c.Tail
		if start < 0 {
			start = 0
		}
		return start, total
	}

	start = c.Offset
	if start > total {
		start = total
	}
	end = total
	if c.Limit > 0 && start+c.Limit < end {
		end = start + c.Limit
	}
	return start, end
}

// Window returns how many rows Range would keep.
func (c Config) Window(total int) int {
	start, end := c.Range(total)
	return end - start
}

// Bound returns the number of leading rows a streaming reader must consume
// before the window is known to be complete, or -1 when every row is needed.
func (c Config) Bound() int {
	if c.Tail > 0 || c.Limit == 0 {
		return -1
	}
	return c.Offset + c.Limit
}

// Describe renders the active window for status lines, e.g. "offset 10, limit 5".
func (c Config) Describe() string {
	switch {
	case c.Tail > 0:
		return fmt.Sprintf("last %d", c.Tail)
	case c.Offset > 0 && c.Limit > 0:
		return fmt.Sprintf("offset %d, limit %d", c.Offset, c.Limit)
	case c.Offset > 0:
		return fmt.Sprintf("offset %d", c.Offset)
	case c.Limit > 0:
		return fmt.Sprintf("first %d", c.Limit)
	}
	return ""
}
