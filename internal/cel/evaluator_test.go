package cel

import (
	"strings"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tv/internal/store"
)

func peopleStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New([]*store.Column{
		store.NewColumn("name", store.KindString, []string{"ann", "bob", "cid"}, nil),
		store.NewColumn("age", store.KindInt, []string{"31", store.NullMarker, "7"}, []bool{false, true, false}),
		store.NewColumn("score", store.KindFloat, []string{"2.5", "9", "5.25"}, nil),
		store.NewColumn("active", store.KindBool, []string{"true", "false", "true"}, nil),
		store.NewColumn("first name", store.KindString, []string{"Ann", "Bob", "Cid"}, nil),
	})
	require.NoError(t, err)
	return s
}

func matches(t *testing.T, s *store.Store, expr string) []int {
	t.Helper()
	p, err := Compile(expr, s)
	require.NoError(t, err, expr)
	var rows []int
	for row := 0; row < s.NumRows(); row++ {
		if p.Match(s, row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func TestCompileAndMatch(t *testing.T) {
	s := peopleStore(t)
	tests := []struct {
		expr string
		want []int
	}{
		{expr: `age > 5`, want: []int{0, 2}},
		{expr: `age > 7.5`, want: []int{0}},
		{expr: `score > 5`, want: []int{1, 2}},
		{expr: `score == 9`, want: []int{1}},
		{expr: `active`, want: []int{0, 2}},
		{expr: `!active`, want: []int{1}},
		{expr: `name.startsWith("b") || name == "cid"`, want: []int{1, 2}},
		{expr: `_["first name"] == "Ann"`, want: []int{0}},
		{expr: `age == null`, want: []int{1}},
		{expr: `[31, 99].exists(x, x == age)`, want: []int{0}},
		{expr: `name.upperAscii() == "BOB"`, want: []int{1}},
		{expr: `size(name) > 10`, want: nil},
		{expr: `math.abs(score) > 3.0`, want: []int{1, 2}},
		{expr: `base64.encode(b"a") == "YQ=="`, want: []int{0, 1, 2}},
		{expr: `strings.quote(name) == "\"bob\""`, want: []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(t, s, tt.expr))
		})
	}
}

func TestCompileErrors(t *testing.T) {
	s := peopleStore(t)
	tests := []struct {
		name   string
		expr   string
		errMsg string
	}{
		{name: "unknown column", expr: `salary > 5`, errMsg: `unknown column "salary"`},
		{name: "unknown namespace", expr: `geo.distance(score) > 1.0`, errMsg: `unknown column "geo"`},
		{name: "syntax", expr: `age >`, errMsg: "syntax error"},
		{name: "not bool", expr: `name + "x"`, errMsg: "must evaluate to bool"},
		{name: "non identifier column by name", expr: `first > 1`, errMsg: "unknown column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr, s)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPredicateString(t *testing.T) {
	p, err := Compile(`age > 5`, peopleStore(t))
	require.NoError(t, err)
	assert.Equal(t, "age > 5", p.String())
}

func TestValue(t *testing.T) {
	s := peopleStore(t)
	assert.Equal(t, int64(31), Value(s.Column(1), 0))
	assert.Equal(t, types.NullValue, Value(s.Column(1), 1))
	assert.Equal(t, 9.0, Value(s.Column(2), 1))
	assert.Equal(t, true, Value(s.Column(3), 0))
	assert.Equal(t, "ann", Value(s.Column(0), 0))

	odd := store.NewColumn("n", store.KindInt, []string{"n/a"}, nil)
	assert.Equal(t, "n/a", Value(odd, 0), "unparseable values stay strings")
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("age"))
	assert.True(t, IsIdentifier("_private"))
	assert.False(t, IsIdentifier("_"))
	assert.False(t, IsIdentifier("first name"))
	assert.False(t, IsIdentifier("2nd"))
	assert.False(t, IsIdentifier("in"))
}

func TestReferencedIdents(t *testing.T) {
	env, err := newStandardCELEnv()
	require.NoError(t, err)

	tests := []struct {
		expr string
		want []string
	}{
		{expr: `a > 1 && b.c == "x"`, want: []string{"a", "b"}},
		{expr: `items.exists(x, x > limit)`, want: []string{"items", "limit"}},
		{expr: `{"k": v}["k"] == [w][0]`, want: []string{"v", "w"}},
		{expr: `_["first name"] == f(z)`, want: []string{"_", "z"}},
		{expr: `math.abs(n) > 1`, want: []string{"n"}},
		{expr: `base64.encode(b) == s`, want: []string{"b", "s"}},
		{expr: `obj.size(n) > 1`, want: []string{"n", "obj"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			ast, issues := env.Parse(tt.expr)
			require.NoError(t, issues.Err())
			parsed, err := cel.AstToParsedExpr(ast)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ReferencedIdents(parsed.GetExpr(), declaredFunctions(env)))
		})
	}
}

func TestFunctionsIncludesExtensions(t *testing.T) {
	funcs, err := Functions()
	require.NoError(t, err)
	require.Greater(t, len(funcs), 10)

	joined := strings.Join(funcs, "\n")
	assert.Contains(t, joined, "startsWith()")
	assert.Contains(t, joined, "upperAscii()")
	assert.Contains(t, joined, "exists() - macro")
	for _, f := range funcs {
		assert.False(t, strings.HasPrefix(f, "_"), "operator leaked: %s", f)
	}
}

func TestIsOperator(t *testing.T) {
	assert.True(t, isOperator("_==_"))
	assert.True(t, isOperator("@in"))
	assert.True(t, isOperator("!_"))
	assert.False(t, isOperator("size"))
}
