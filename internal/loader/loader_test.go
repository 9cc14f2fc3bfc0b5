package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tv/internal/limiter"
	"github.com/oakwood-commons/tv/internal/store"
)

const peopleCSV = "name,age,city\nann,31,Oslo\nbob,,\"Bergen, NO\"\ncid,27,\"multi\nline\"\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testRecord(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3, 4}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"a", "", "c", "d"}, []bool{true, false, true, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{0.5, 1.5, 2.5, 3.5}, nil)
	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func parquetBytes(t *testing.T) []byte {
	t.Helper()
	rec := testRecord(t)
	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(rec.Schema(), &buf, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func arrowFileBytes(t *testing.T) []byte {
	t.Helper()
	rec := testRecord(t)
	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(rec.Schema()))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func arrowStreamBytes(t *testing.T) []byte {
	t.Helper()
	rec := testRecord(t)
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()))
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "people.csv", []byte(peopleCSV))

	res, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)

	s := res.Store
	assert.Equal(t, []string{"name", "age", "city"}, s.Names())
	assert.Equal(t, 3, s.NumRows())
	assert.Equal(t, store.KindString, s.Column(0).Kind)
	assert.Equal(t, store.KindInt, s.Column(1).Kind)
	assert.Equal(t, store.NullMarker, s.Cell(1, 1))
	assert.True(t, s.Column(1).IsNull(1))
	assert.Equal(t, "Bergen, NO", s.Cell(2, 1))
	assert.Equal(t, "multi ↵ line", s.Cell(2, 2))

	assert.Equal(t, store.FormatCSV, res.Info.Format)
	assert.Equal(t, "people.csv", res.Info.Name())
	assert.Equal(t, 3, res.Info.Rows)
	assert.Equal(t, 3, res.Info.Columns)
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "data.tsv", []byte("a\tb\n1\tx,y\n"))
	res, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Store.Names())
	assert.Equal(t, "x,y", res.Store.Cell(1, 0))
}

func TestLoadCompressedCSV(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     []byte
		wantComp store.Compression
	}{
		{name: "gzip suffix", file: "people.csv.gz", data: gzipBytes(t, []byte(peopleCSV)), wantComp: store.CompressionGzip},
		{name: "zstd suffix", file: "people.csv.zst", data: zstdBytes(t, []byte(peopleCSV)), wantComp: store.CompressionZstd},
		{name: "gzip magic without suffix", file: "people", data: gzipBytes(t, []byte(peopleCSV)), wantComp: store.CompressionGzip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			res, err := Load(context.Background(), path, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantComp, res.Info.Compression)
			assert.Equal(t, store.FormatCSV, res.Info.Format)
			assert.Equal(t, "ann", res.Store.Cell(0, 0))
		})
	}
}

func TestLoadColumnar(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		data   func(*testing.T) []byte
		format store.Format
	}{
		{name: "parquet", file: "t.parquet", data: parquetBytes, format: store.FormatParquet},
		{name: "parquet sniffed", file: "t.bin", data: parquetBytes, format: store.FormatParquet},
		{name: "arrow file", file: "t.arrow", data: arrowFileBytes, format: store.FormatArrow},
		{name: "arrow file sniffed", file: "t.dat", data: arrowFileBytes, format: store.FormatArrow},
		{name: "arrow stream", file: "t.arrows.ipc", data: arrowStreamBytes, format: store.FormatArrow},
		{name: "feather", file: "t.feather", data: arrowFileBytes, format: store.FormatArrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data(t))
			res, err := Load(context.Background(), path, Options{})
			require.NoError(t, err)

			s := res.Store
			assert.Equal(t, tt.format, res.Info.Format)
			assert.Equal(t, []string{"id", "name", "score"}, s.Names())
			assert.Equal(t, 4, s.NumRows())
			assert.Equal(t, store.KindInt, s.Column(0).Kind)
			assert.Equal(t, store.KindString, s.Column(1).Kind)
			assert.Equal(t, store.KindFloat, s.Column(2).Kind)
			assert.Equal(t, "3", s.Cell(0, 2))
			assert.Equal(t, store.NullMarker, s.Cell(1, 1))
			assert.True(t, s.Column(1).IsNull(1))
			assert.Equal(t, "c", s.Cell(1, 2))
		})
	}
}

func TestLoadWindow(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 10; i++ {
		b.WriteString(string(rune('0'+i)) + "\n")
	}
	csvPath := writeFile(t, "n.csv", []byte(b.String()))
	pqPath := writeFile(t, "t.parquet", parquetBytes(t))

	tests := []struct {
		name   string
		path   string
		window limiter.Config
		first  string
		rows   int
		start  int
	}{
		{name: "csv whole file", path: csvPath, first: "0", rows: 10, start: 0},
		{name: "csv offset limit", path: csvPath, window: limiter.Config{Offset: 2, Limit: 3}, first: "2", rows: 3, start: 2},
		{name: "csv tail", path: csvPath, window: limiter.Config{Tail: 4}, first: "6", rows: 4, start: 6},
		{name: "parquet offset", path: pqPath, window: limiter.Config{Offset: 1}, first: "2", rows: 3, start: 1},
		{name: "parquet tail", path: pqPath, window: limiter.Config{Tail: 1}, first: "4", rows: 1, start: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Load(context.Background(), tt.path, Options{Window: tt.window})
			require.NoError(t, err)
			assert.Equal(t, tt.rows, res.Store.NumRows())
			assert.Equal(t, tt.first, res.Store.Cell(0, 0))
			assert.Equal(t, tt.start, res.Info.FirstRow)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	big := writeFile(t, "big.csv", []byte(peopleCSV))

	tests := []struct {
		name string
		path string
		opts Options
		want error
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), want: ErrIO},
		{name: "directory", path: dir, want: ErrIO},
		{name: "file too large", path: big, opts: Options{MaxFileSize: 10}, want: ErrFileTooLarge},
		{name: "too many rows", path: big, opts: Options{MaxRows: 2}, want: ErrTooManyRows},
		{name: "too many rows after window", path: big, opts: Options{MaxRows: 1, Window: limiter.Config{Tail: 2}}, want: ErrTooManyRows},
		{name: "too many parquet rows", path: writeFile(t, "big.parquet", parquetBytes(t)), opts: Options{MaxRows: 3}, want: ErrTooManyRows},
		{name: "too many arrow file rows", path: writeFile(t, "big.arrow", arrowFileBytes(t)), opts: Options{MaxRows: 3}, want: ErrTooManyRows},
		{name: "too many arrow stream rows", path: writeFile(t, "big.ipc", arrowStreamBytes(t)), opts: Options{MaxRows: 2}, want: ErrTooManyRows},
		{name: "unsupported binary", path: writeFile(t, "blob", []byte{0x00, 0x01, 0x02, 0x03}), want: ErrUnsupportedFormat},
		{name: "ragged csv", path: writeFile(t, "bad.csv", []byte("a,b\n1,2,3\n")), want: ErrParse},
		{name: "empty csv", path: writeFile(t, "empty.csv", nil), want: ErrParse},
		{name: "corrupt parquet", path: writeFile(t, "bad.parquet", []byte("PAR1 not really")), want: ErrParse},
		{name: "decompressed too large", path: writeFile(t, "z.csv.gz", gzipBytes(t, bytes.Repeat([]byte("a\n"), 4096))), opts: Options{MaxFileSize: 1024}, want: ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Load(context.Background(), tt.path, tt.opts)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.path, le.Path)
		})
	}
}

func TestLoadRowGuardAllowsExactLimit(t *testing.T) {
	path := writeFile(t, "people.csv", []byte(peopleCSV))
	res, err := Load(context.Background(), path, Options{MaxRows: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Store.NumRows())
}

func TestCheckRows(t *testing.T) {
	assert.Nil(t, checkRows(Options{}, 1_000_000), "zero disables the guard")
	assert.Nil(t, checkRows(Options{MaxRows: 4}, 4))

	err := checkRows(Options{MaxRows: 4}, 5)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrTooManyRows))
	assert.Equal(t, "count", err.Op)

	windowed := Options{MaxRows: 4, Window: limiter.Config{Offset: 10, Limit: 4}}
	assert.Nil(t, checkRows(windowed, 1_000_000), "limit keeps the window small")
	assert.Nil(t, checkRows(Options{MaxRows: 4, Window: limiter.Config{Tail: 3}}, 1_000_000))
	assert.NotNil(t, checkRows(Options{MaxRows: 4, Window: limiter.Config{Offset: 2}}, 7))
}

func TestLoadColumnarWindowWithinLimit(t *testing.T) {
	path := writeFile(t, "t.parquet", parquetBytes(t))
	res, err := Load(context.Background(), path, Options{MaxRows: 2, Window: limiter.Config{Tail: 2}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Store.NumRows())
	assert.Equal(t, 2, res.Info.FirstRow)

	stream := writeFile(t, "t.ipc", arrowStreamBytes(t))
	res, err = Load(context.Background(), stream, Options{MaxRows: 1, Window: limiter.Config{Offset: 3}})
	require.NoError(t, err)
	assert.Equal(t, "4", res.Store.Cell(0, 0))
}

func TestLoadCanceled(t *testing.T) {
	path := writeFile(t, "t.parquet", parquetBytes(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, path, Options{})
	require.Error(t, err)
}

func TestLoadErrorMessage(t *testing.T) {
	err := newError("/tmp/x.csv", "parse", ErrParse, errors.New("bad quote"))
	assert.Equal(t, "parse /tmp/x.csv: parse error: bad quote", err.Error())
	assert.True(t, errors.Is(err, ErrParse))

	err = newError("/tmp/x", "detect", ErrUnsupportedFormat, nil)
	assert.Equal(t, "detect /tmp/x: unsupported format", err.Error())
}

func TestSniffFormat(t *testing.T) {
	f, _ := sniffFormat([]byte("PAR1...."))
	assert.Equal(t, store.FormatParquet, f)
	f, _ = sniffFormat([]byte("ARROW1\x00\x00"))
	assert.Equal(t, store.FormatArrow, f)
	f, d := sniffFormat([]byte("a\tb\n1\t2\n"))
	assert.Equal(t, store.FormatCSV, f)
	assert.Equal(t, '\t', d)
	f, d = sniffFormat([]byte("a,b\n"))
	assert.Equal(t, store.FormatCSV, f)
	assert.Equal(t, ',', d)
	f, _ = sniffFormat([]byte{0x00, 0x10})
	assert.Equal(t, store.FormatUnknown, f)
	f, _ = sniffFormat(nil)
	assert.Equal(t, store.FormatUnknown, f)
}
