// Package loader decodes CSV, Parquet and Arrow files into a column store.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/tv/internal/limiter"
	"github.com/oakwood-commons/tv/internal/store"
	"github.com/oakwood-commons/tv/pkg/logger"
)

// Options bound the size of a load and select the ingested row window.
type Options struct {
	MaxFileSize int64 // bytes on disk, and after decompression; 0 disables
	MaxRows     int   // rows after windowing; 0 disables
	Window      limiter.Config
	Workers     int // concurrent column decoders; 0 uses GOMAXPROCS
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Result is a fully decoded file.
type Result struct {
	Store *store.Store
	Info  store.FileInfo
}

// source is a random-access view of the file contents.
type source interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

// table is a parsed file whose columns have not been rendered yet.
type table interface {
	Names() []string
	NumRows() int
	// Column renders rows [start, end) of column i.
	Column(ctx context.Context, i, start, end int) (*store.Column, error)
	Release()
}

// Load reads path, detects its format and decodes every column in parallel.
// It either returns a complete Result or an error wrapping one of the
// package sentinels; partial results are never returned.
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	lgr := logger.FromContext(ctx).WithValues(logger.PathKey, path)
	started := time.Now()

	if err := opts.Window.Validate(); err != nil {
		return nil, newError(path, "window", ErrParse, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, newError(path, "stat", ErrIO, err)
	}
	if !fi.Mode().IsRegular() {
		return nil, newError(path, "stat", ErrIO, errors.New("not a regular file"))
	}
	if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
		return nil, newError(path, "stat", ErrFileTooLarge,
			fmt.Errorf("%d bytes exceeds the limit of %d", fi.Size(), opts.MaxFileSize))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(path, "open", ErrIO, err)
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return nil, newError(path, "read", ErrIO, err)
	}

	name, compression := detectCompression(path, head)
	var src source = f
	if compression != store.CompressionNone {
		data, err := decompress(f, compression, opts.MaxFileSize)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.Path = path
				return nil, le
			}
			return nil, newError(path, "decompress", ErrParse, err)
		}
		src = bytes.NewReader(data)
		head = data[:min(len(data), sniffLen)]
	}

	format, delim := formatFromExtension(name)
	if format == store.FormatUnknown {
		format, delim = sniffFormat(head)
	}
	lgr.V(1).Info("loading file", logger.FormatKey, format.String(), "compression", compression.String())

	var tbl table
	switch format {
	case store.FormatCSV:
		tbl, err = readCSV(ctx, src, delim, csvLimits(opts))
	case store.FormatParquet:
		tbl, err = readParquet(ctx, src, opts)
	case store.FormatArrow:
		tbl, err = readArrow(src, opts)
	default:
		return nil, newError(path, "detect", ErrUnsupportedFormat, nil)
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, newError(path, "parse", ErrParse, err)
	}
	defer tbl.Release()

	total := tbl.NumRows()
	start, end := opts.Window.Range(total)
	if err := checkRows(opts, total); err != nil {
		err.Path = path
		return nil, err
	}

	columns, err := decodeColumns(ctx, tbl, start, end, opts.workers())
	if err != nil {
		return nil, newError(path, "decode", ErrParse, err)
	}
	st, err := store.New(columns)
	if err != nil {
		return nil, newError(path, "decode", ErrParse, err)
	}

	info := store.FileInfo{
		Path:         path,
		Size:         fi.Size(),
		Format:       format,
		Compression:  compression,
		Rows:         st.NumRows(),
		TotalRows:    total,
		FirstRow:     start,
		Columns:      st.NumColumns(),
		LoadDuration: time.Since(started),
	}
	lgr.V(1).Info("loaded file",
		"rows", info.Rows,
		"columns", info.Columns,
		logger.DurationKey, info.LoadDuration.String())
	return &Result{Store: st, Info: info}, nil
}

// checkRows reports ErrTooManyRows once the window over total rows exceeds
// opts.MaxRows. The window never shrinks as total grows, so readers may call
// it with a partial count to stop early.
func checkRows(opts Options, total int) *LoadError {
	if opts.MaxRows <= 0 {
		return nil
	}
	if n := opts.Window.Window(total); n > opts.MaxRows {
		return newError("", "count", ErrTooManyRows,
			fmt.Errorf("%d rows exceeds the limit of %d", n, opts.MaxRows))
	}
	return nil
}

// decodeColumns renders every column concurrently; the first failure cancels the rest.
func decodeColumns(ctx context.Context, tbl table, start, end, workers int) ([]*store.Column, error) {
	names := tbl.Names()
	columns := make([]*store.Column, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := tbl.Column(gctx, i, start, end)
			if err != nil {
				return fmt.Errorf("column %q: %w", names[i], err)
			}
			columns[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return columns, nil
}

func readHead(f *os.File) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return head[:n], nil
}

// decompress inflates the whole stream, refusing to grow past limit bytes.
func decompress(r io.Reader, compression store.Compression, limit int64) ([]byte, error) {
	var rc io.ReadCloser
	switch compression {
	case store.CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		rc = zr
	case store.CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		rc = dec.IOReadCloser()
	default:
		return io.ReadAll(r)
	}
	defer rc.Close()

	var in io.Reader = rc
	if limit > 0 {
		in = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, newError("", "decompress", ErrFileTooLarge,
			fmt.Errorf("decompressed size exceeds the limit of %d bytes", limit))
	}
	return data, nil
}
