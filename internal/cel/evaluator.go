// Package cel compiles CEL expressions into row predicates over a column store.
package cel

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/tv/internal/store"
)

// RowVar holds the whole row as a map from column name to value, so columns
// whose names are not identifiers stay reachable: _["first name"].
const RowVar = "_"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedWords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"false": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "let": true, "loop": true, "package": true, "namespace": true,
	"null": true, "return": true, "true": true, "var": true, "void": true, "while": true,
}

// IsIdentifier reports whether a column name can be used as a bare CEL variable.
func IsIdentifier(name string) bool {
	return name != RowVar && identifierPattern.MatchString(name) && !reservedWords[name]
}

// newStandardCELEnv creates a standard CEL environment with common extensions.
// Additional options can be provided to extend the environment (e.g., column variables).
func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RowVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

type binding struct {
	name string
	col  int
}

// Predicate is a compiled boolean expression evaluated against one row at a time.
// It is safe for concurrent use.
type Predicate struct {
	source   string
	prg      cel.Program
	bindings []binding
	wholeRow bool
}

// Compile parses, checks and plans expr against the columns of s. Identifiers
// that do not name a column are rejected before any row is evaluated.
func Compile(expr string, s *store.Store) (*Predicate, error) {
	var vars []cel.EnvOption
	declared := make(map[string]bool)
	for _, name := range s.Names() {
		if IsIdentifier(name) && !declared[name] {
			declared[name] = true
			vars = append(vars, cel.Variable(name, cel.DynType))
		}
	}
	env, err := newStandardCELEnv(vars...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("syntax error: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}

	p := &Predicate{source: expr}
	for _, name := range ReferencedIdents(parsed.GetExpr(), declaredFunctions(env)) {
		if name == RowVar {
			p.wholeRow = true
			continue
		}
		col, ok := s.Lookup(name)
		if !ok || !declared[name] {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		p.bindings = append(p.bindings, binding{name: name, col: col})
	}

	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if k := checked.OutputType().Kind(); k != types.BoolKind && k != types.DynKind {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", checked.OutputType())
	}

	p.prg, err = env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return p, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.source }

// Match evaluates the expression for one row. Evaluation errors and
// non-boolean results count as a non-match.
func (p *Predicate) Match(s *store.Store, row int) bool {
	activation := make(map[string]any, len(p.bindings)+1)
	for _, b := range p.bindings {
		activation[b.name] = Value(s.Column(b.col), row)
	}
	if p.wholeRow {
		m := make(map[string]any, s.NumColumns())
		for _, c := range s.Columns() {
			if _, dup := m[c.Name]; !dup {
				m[c.Name] = Value(c, row)
			}
		}
		activation[RowVar] = m
	}

	out, _, err := p.prg.Eval(activation)
	if err != nil {
		return false
	}
	b, ok := out.(types.Bool)
	return ok && bool(b)
}

// Value converts a cell to the CEL value matching its column kind. Values
// that do not parse as the column kind stay strings.
func Value(c *store.Column, row int) any {
	if c.IsNull(row) {
		return types.NullValue
	}
	v := c.Values[row]
	switch c.Kind {
	case store.KindInt:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case store.KindFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case store.KindBool:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return v
}

// ReferencedIdents returns the free identifiers of a parsed expression in
// sorted order. Comprehension variables are bound and therefore excluded. A
// call target such as math in math.abs(x) is a namespace, not an identifier,
// when functions holds the qualified name.
func ReferencedIdents(expr *exprpb.Expr, functions map[string]bool) []string {
	c := identCollector{functions: functions, out: make(map[string]bool)}
	c.collect(expr, map[string]bool{})
	names := make([]string, 0, len(c.out))
	for name := range c.out {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// declaredFunctions returns the names of every function declared in env.
func declaredFunctions(env *cel.Env) map[string]bool {
	fns := env.Functions()
	names := make(map[string]bool, len(fns))
	for name := range fns {
		names[name] = true
	}
	return names
}

// qualifiedName renders an ident or a chain of field selections as a dotted
// name, or "" for anything else.
func qualifiedName(e *exprpb.Expr) string {
	switch e.GetExprKind().(type) {
	case *exprpb.Expr_IdentExpr:
		return e.GetIdentExpr().GetName()
	case *exprpb.Expr_SelectExpr:
		sel := e.GetSelectExpr()
		if sel.GetTestOnly() {
			return ""
		}
		if operand := qualifiedName(sel.GetOperand()); operand != "" {
			return operand + "." + sel.GetField()
		}
	}
	return ""
}

type identCollector struct {
	functions map[string]bool
	out       map[string]bool
}

func (c identCollector) collect(e *exprpb.Expr, bound map[string]bool) {
	if e == nil {
		return
	}
	switch e.ExprKind.(type) {
	case *exprpb.Expr_IdentExpr:
		if name := e.GetIdentExpr().GetName(); !bound[name] {
			c.out[name] = true
		}
	case *exprpb.Expr_SelectExpr:
		c.collect(e.GetSelectExpr().GetOperand(), bound)
	case *exprpb.Expr_CallExpr:
		call := e.GetCallExpr()
		ns := qualifiedName(call.GetTarget())
		if ns == "" || !c.functions[ns+"."+call.GetFunction()] {
			c.collect(call.GetTarget(), bound)
		}
		for _, arg := range call.GetArgs() {
			c.collect(arg, bound)
		}
	case *exprpb.Expr_ListExpr:
		for _, elem := range e.GetListExpr().GetElements() {
			c.collect(elem, bound)
		}
	case *exprpb.Expr_StructExpr:
		for _, entry := range e.GetStructExpr().GetEntries() {
			c.collect(entry.GetMapKey(), bound)
			c.collect(entry.GetValue(), bound)
		}
	case *exprpb.Expr_ComprehensionExpr:
		comp := e.GetComprehensionExpr()
		c.collect(comp.GetIterRange(), bound)
		inner := make(map[string]bool, len(bound)+2)
		for k := range bound {
			inner[k] = true
		}
		inner[comp.GetIterVar()] = true
		inner[comp.GetAccuVar()] = true
		c.collect(comp.GetAccuInit(), inner)
		c.collect(comp.GetLoopCondition(), inner)
		c.collect(comp.GetLoopStep(), inner)
		c.collect(comp.GetResult(), inner)
	}
}
