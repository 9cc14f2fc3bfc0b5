package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/tv/internal/store"
)

// ctxCheckEvery is how many records are read between cancellation checks.
const ctxCheckEvery = 4096

// csvLimit lets the CSV reader stop early instead of buffering rows that the
// window would drop or the row guard would reject.
type csvLimit struct {
	stop    int // stop reading after this many records; -1 reads everything
	tooMany int // fail once this many records are buffered; -1 disables
}

func csvLimits(opts Options) csvLimit {
	l := csvLimit{stop: opts.Window.Bound(), tooMany: -1}
	if opts.MaxRows > 0 && opts.Window.Tail == 0 && opts.Window.Limit == 0 {
		l.tooMany = opts.Window.Offset + opts.MaxRows + 1
	}
	return l
}

type csvTable struct {
	names   []string
	records [][]string
}

func readCSV(ctx context.Context, r io.Reader, delim rune, limit csvLimit) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	t := &csvTable{names: make([]string, len(header))}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		t.names[i] = name
	}

	for {
		if limit.stop >= 0 && len(t.records) >= limit.stop {
			break
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.records = append(t.records, rec)

		if limit.tooMany > 0 && len(t.records) >= limit.tooMany {
			return nil, newError("", "count", ErrTooManyRows,
				fmt.Errorf("more than %d rows", limit.tooMany-1))
		}
		if len(t.records)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, newError("", "read", ErrIO, err)
			}
		}
	}
	return t, nil
}

func (t *csvTable) Names() []string { return t.names }

func (t *csvTable) NumRows() int { return len(t.records) }

func (t *csvTable) Release() {}

// Column renders one CSV column. Empty fields are treated as missing values.
func (t *csvTable) Column(ctx context.Context, i, start, end int) (*store.Column, error) {
	n := end - start
	values := make([]string, n)
	nulls := make([]bool, n)
	for k := 0; k < n; k++ {
		if k%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := t.records[start+k][i]
		if raw == "" {
			values[k] = store.NullMarker
			nulls[k] = true
			continue
		}
		values[k] = store.Normalize(raw)
	}
	kind := store.InferKind(values, nulls)
	return store.NewColumn(t.names[i], kind, values, nulls), nil
}
