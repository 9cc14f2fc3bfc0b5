package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/oakwood-commons/tv/internal/store"
)

// parquetBatchSize is the number of rows pqarrow decodes per batch.
const parquetBatchSize = 64 * 1024

type arrowTable struct {
	tbl arrow.Table
}

func readParquet(ctx context.Context, src source, opts Options) (*arrowTable, error) {
	pf, err := file.NewParquetReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer pf.Close()
	if err := checkRows(opts, int(pf.NumRows())); err != nil {
		return nil, err
	}

	fr, err := pqarrow.NewFileReader(pf,
		pqarrow.ArrowReadProperties{Parallel: true, BatchSize: parquetBatchSize},
		memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	return &arrowTable{tbl: tbl}, nil
}

// readArrow reads an Arrow IPC file, falling back to the stream format when
// the file footer is missing.
func readArrow(src source, opts Options) (*arrowTable, error) {
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(src, ipc.WithAllocator(mem))
	if err != nil {
		if _, serr := src.Seek(0, io.SeekStart); serr != nil {
			return nil, serr
		}
		return readArrowStream(src, mem, opts, err)
	}
	defer fr.Close()

	records := make([]arrow.Record, 0, fr.NumRecords())
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	total := 0
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record batch %d: %w", i, err)
		}
		rec.Retain()
		records = append(records, rec)
		total += int(rec.NumRows())
		if err := checkRows(opts, total); err != nil {
			return nil, err
		}
	}
	return &arrowTable{tbl: array.NewTableFromRecords(fr.Schema(), records)}, nil
}

func readArrowStream(r io.Reader, mem memory.Allocator, opts Options, fileErr error) (*arrowTable, error) {
	sr, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("not an arrow file (%v) or stream: %w", fileErr, err)
	}
	defer sr.Release()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	total := 0
	for sr.Next() {
		rec := sr.Record()
		rec.Retain()
		records = append(records, rec)
		total += int(rec.NumRows())
		if err := checkRows(opts, total); err != nil {
			return nil, err
		}
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arrow stream: %w", err)
	}
	return &arrowTable{tbl: array.NewTableFromRecords(sr.Schema(), records)}, nil
}

func (t *arrowTable) Names() []string {
	fields := t.tbl.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func (t *arrowTable) NumRows() int { return int(t.tbl.NumRows()) }

func (t *arrowTable) Release() { t.tbl.Release() }

// Column renders rows [start, end) of column i across its chunks.
func (t *arrowTable) Column(ctx context.Context, i, start, end int) (*store.Column, error) {
	col := t.tbl.Column(i)
	n := end - start
	values := make([]string, 0, n)
	nulls := make([]bool, 0, n)

	offset := 0
	for _, chunk := range col.Data().Chunks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		size := chunk.Len()
		lo, hi := max(start-offset, 0), min(end-offset, size)
		for j := lo; j < hi; j++ {
			if chunk.IsNull(j) {
				values = append(values, store.NullMarker)
				nulls = append(nulls, true)
				continue
			}
			values = append(values, store.Normalize(chunk.ValueStr(j)))
			nulls = append(nulls, false)
		}
		offset += size
		if offset >= end {
			break
		}
	}
	return store.NewColumn(col.Name(), kindOf(col.DataType()), values, nulls), nil
}

func kindOf(dt arrow.DataType) store.Kind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return store.KindInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return store.KindFloat
	case arrow.BOOL:
		return store.KindBool
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP, arrow.TIME32, arrow.TIME64, arrow.DURATION:
		return store.KindTemporal
	case arrow.DICTIONARY:
		if d, ok := dt.(*arrow.DictionaryType); ok {
			return kindOf(d.ValueType)
		}
	}
	return store.KindString
}
