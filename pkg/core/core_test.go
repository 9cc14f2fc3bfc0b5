package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tv/internal/loader"
)

func loadSample(t *testing.T, opts ...Option) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fruit.csv")
	data := "fruit,color,weight\napple,red,120\nbanana,yellow,150\ncherry,red,8\nlemon,yellow,90\nplum,purple,60\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	tbl, err := LoadFile(context.Background(), path, opts...)
	require.NoError(t, err)
	return tbl
}

func TestLoadFile(t *testing.T) {
	tbl := loadSample(t)
	assert.Equal(t, "fruit.csv", tbl.Name())
	assert.Equal(t, []string{"fruit", "color", "weight"}, tbl.Columns())
	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, []string{"banana", "yellow", "150"}, tbl.Row(1))
}

func TestLoadFileOptions(t *testing.T) {
	tbl := loadSample(t, WithWindow(0, 0, 2), WithWorkers(1))
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "lemon", tbl.Row(0)[0])

	dir := t.TempDir()
	path := filepath.Join(dir, "big.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n2\n3\n"), 0o600))
	_, err := LoadFile(context.Background(), path, WithMaxRows(2))
	assert.ErrorIs(t, err, loader.ErrTooManyRows)
	_, err = LoadFile(context.Background(), path, WithMaxFileSize(2))
	assert.ErrorIs(t, err, loader.ErrFileTooLarge)
}

func TestWhere(t *testing.T) {
	tbl := loadSample(t)
	heavy, err := tbl.Where("weight >= 90")
	require.NoError(t, err)
	require.Equal(t, 3, heavy.Len())
	assert.Equal(t, []int{0, 1, 3}, []int{heavy.OriginalRow(0), heavy.OriginalRow(1), heavy.OriginalRow(2)})
	assert.Equal(t, 5, tbl.Len(), "receiver is unchanged")

	_, err = tbl.Where("weight >")
	assert.Error(t, err)
}

func TestContainsAndMatch(t *testing.T) {
	tbl := loadSample(t)
	red, err := tbl.Contains("color", "RED", true)
	require.NoError(t, err)
	assert.Equal(t, 2, red.Len())

	e, err := tbl.Match("fruit", "^[a-c]")
	require.NoError(t, err)
	assert.Equal(t, 3, e.Len())

	_, err = tbl.Match("fruit", "(")
	assert.Error(t, err)
	_, err = tbl.Contains("taste", "sweet", false)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSortAndHistogram(t *testing.T) {
	tbl := loadSample(t)
	sorted, err := tbl.Sort("weight", true)
	require.NoError(t, err)
	assert.Equal(t, "cherry", sorted.Row(0)[0])
	assert.Equal(t, "banana", sorted.Row(4)[0])

	hist, err := tbl.Histogram("color")
	require.NoError(t, err)
	assert.Equal(t, []Bucket{{Value: "red", Count: 2}, {Value: "yellow", Count: 2}, {Value: "purple", Count: 1}}, hist)

	_, err = tbl.Histogram("taste")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestWriteCSV(t *testing.T) {
	tbl := loadSample(t)
	yellow, err := tbl.Contains("color", "yellow", false)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, yellow.WriteCSV(&b))
	assert.Equal(t, "fruit,color,weight\nbanana,yellow,150\nlemon,yellow,90\n", b.String())
}
