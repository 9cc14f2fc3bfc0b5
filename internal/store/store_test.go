package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New([]*Column{
		NewColumn("a", KindString, []string{"1", "2"}, nil),
		NewColumn("b", KindString, []string{"1"}, nil),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestStoreAccessors(t *testing.T) {
	s, err := New([]*Column{
		NewColumn("name", KindString, []string{"ann", "bob"}, nil),
		NewColumn("age", KindInt, []string{"31", NullMarker}, []bool{false, true}),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumRows())
	assert.Equal(t, 2, s.NumColumns())
	assert.Equal(t, []string{"name", "age"}, s.Names())
	assert.Equal(t, "bob", s.Cell(0, 1))
	assert.Equal(t, []string{"bob", NullMarker}, s.Row(1))
	assert.True(t, s.Column(1).IsNull(1))
	assert.False(t, s.Column(0).IsNull(1))
	assert.Equal(t, "", s.RawCell(1, 1), "missing values copy as empty")
	assert.Equal(t, "31", s.RawCell(1, 0))
	assert.Equal(t, []string{"bob", ""}, s.RawRow(1))

	i, ok := s.Lookup("age")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestNilStoreIsEmpty(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.NumRows())
	assert.Equal(t, 0, s.NumColumns())
	_, ok := s.Lookup("x")
	assert.False(t, ok)
}

func TestColumnMaxWidth(t *testing.T) {
	c := NewColumn("c", KindString, []string{"ab", "日本", "x"}, nil)
	assert.Equal(t, 4, c.MaxWidth())
	assert.False(t, c.HasNulls())

	c = NewColumn("c", KindString, []string{"a"}, []bool{false})
	assert.False(t, c.HasNulls(), "all-false null mask is dropped")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "plain", Normalize("plain"))
	assert.Equal(t, "a ↵ b", Normalize("a\nb"))
	assert.Equal(t, "a ↵ b", Normalize("a\r\nb"))
	assert.Equal(t, "a ↵  ↵ b", Normalize("a\n\nb"))
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		nulls  []bool
		want   Kind
	}{
		{name: "ints", values: []string{"1", "-2", "30"}, want: KindInt},
		{name: "floats", values: []string{"1", "2.5", "1e3"}, want: KindFloat},
		{name: "bools", values: []string{"true", "false", "TRUE"}, want: KindBool},
		{name: "strings", values: []string{"1", "x"}, want: KindString},
		{name: "nulls skipped", values: []string{"", "4"}, nulls: []bool{true, false}, want: KindInt},
		{name: "all null", values: []string{""}, nulls: []bool{true}, want: KindString},
		{name: "empty", values: nil, want: KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.values, tt.nulls))
		})
	}
}

func TestRows(t *testing.T) {
	rows := All(4)
	assert.Equal(t, Rows{0, 1, 2, 3}, rows)
	assert.Equal(t, 4, rows.Len())
	assert.Equal(t, Rows{1, 2}, rows.Slice(1, 3))
	assert.Equal(t, Rows{2, 3}, rows.Slice(2, 10))
	assert.Nil(t, rows.Slice(5, 6))
}

func TestFileInfoName(t *testing.T) {
	assert.Equal(t, "data.csv", FileInfo{Path: "/tmp/x/data.csv"}.Name())
	assert.Equal(t, "", FileInfo{}.Name())
	assert.Equal(t, "parquet", FormatParquet.String())
	assert.Equal(t, "zstd", CompressionZstd.String())
}
