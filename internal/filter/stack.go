package filter

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/tv/internal/store"
)

// Entry pairs a stack step with the subset it produced.
type Entry struct {
	Step Step
	Rows store.Rows
}

// Stack is the ordered list of applied filters. The top subset is always
// the active one; an empty stack exposes the base subset.
type Stack struct {
	base    store.Rows
	entries []Entry
}

// NewStack starts a stack over the base subset.
func NewStack(base store.Rows) *Stack {
	return &Stack{base: base}
}

// Push adds a step and the subset it produced.
func (s *Stack) Push(step Step, rows store.Rows) {
	s.entries = append(s.entries, Entry{Step: step, Rows: rows})
}

// Pop discards the top entry. It reports false when the stack was empty.
func (s *Stack) Pop() bool {
	if len(s.entries) == 0 {
		return false
	}
	s.entries[len(s.entries)-1] = Entry{}
	s.entries = s.entries[:len(s.entries)-1]
	return true
}

// Top returns the active subset.
func (s *Stack) Top() store.Rows {
	if len(s.entries) == 0 {
		return s.base
	}
	return s.entries[len(s.entries)-1].Rows
}

// Base returns the unfiltered subset.
func (s *Stack) Base() store.Rows { return s.base }

// Len returns the number of pushed entries.
func (s *Stack) Len() int { return len(s.entries) }

// Steps returns the descriptions of all entries, bottom first.
func (s *Stack) Steps() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Step.String()
	}
	return out
}

// Describe renders the top entry for titles, e.g. F2[age > 5].
func (s *Stack) Describe() string {
	if len(s.entries) == 0 {
		return ""
	}
	top := s.entries[len(s.entries)-1].Step.String()
	return fmt.Sprintf("F%d[%s]", len(s.entries), strings.TrimSpace(top))
}
