// Package filter derives row subsets from a column store: predicates,
// search hits, histograms and the filter stack.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oakwood-commons/tv/internal/cel"
	"github.com/oakwood-commons/tv/internal/store"
)

// Step describes one entry of the filter stack.
type Step interface {
	String() string
}

// Predicate selects rows of a store.
type Predicate interface {
	Step
	Match(s *store.Store, row int) bool
}

// Substring keeps rows whose cell in Column contains Term.
type Substring struct {
	Column     int
	Name       string
	Term       string
	IgnoreCase bool
	lowered    string
}

// NewSubstring builds a substring predicate on one column.
func NewSubstring(column int, name, term string, ignoreCase bool) *Substring {
	return &Substring{Column: column, Name: name, Term: term, IgnoreCase: ignoreCase, lowered: strings.ToLower(term)}
}

func (p *Substring) Match(s *store.Store, row int) bool {
	cell := s.Cell(p.Column, row)
	if p.IgnoreCase {
		return strings.Contains(strings.ToLower(cell), p.lowered)
	}
	return strings.Contains(cell, p.Term)
}

func (p *Substring) String() string {
	return fmt.Sprintf("%s ~ %q", p.Name, p.Term)
}

// Regex keeps rows whose cell in Column matches a regular expression.
type Regex struct {
	Column int
	Name   string
	re     *regexp.Regexp
}

// NewRegex compiles pattern; an invalid pattern is returned as an error.
func NewRegex(column int, name, pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return &Regex{Column: column, Name: name, re: re}, nil
}

func (p *Regex) Match(s *store.Store, row int) bool {
	return p.re.MatchString(s.Cell(p.Column, row))
}

func (p *Regex) String() string {
	return fmt.Sprintf("%s =~ /%s/", p.Name, p.re.String())
}

// InBucket keeps rows whose rendered cell equals Value exactly.
type InBucket struct {
	Column int
	Name   string
	Value  string
}

func (p *InBucket) Match(s *store.Store, row int) bool {
	return s.Cell(p.Column, row) == p.Value
}

func (p *InBucket) String() string {
	return fmt.Sprintf("%s == %q", p.Name, p.Value)
}

// Expression keeps rows for which a CEL expression evaluates to true.
type Expression struct {
	*cel.Predicate
}

// NewExpression compiles source against the columns of s.
func NewExpression(s *store.Store, source string) (*Expression, error) {
	p, err := cel.Compile(source, s)
	if err != nil {
		return nil, err
	}
	return &Expression{Predicate: p}, nil
}

// Apply returns the rows of in that satisfy p, in the order of in.
func Apply(s *store.Store, in store.Rows, p Predicate) store.Rows {
	out := make(store.Rows, 0, len(in)/4)
	for _, row := range in {
		if p.Match(s, row) {
			out = append(out, row)
		}
	}
	return out
}
