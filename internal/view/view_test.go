package view

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tv/internal/filter"
	"github.com/oakwood-commons/tv/internal/store"
)

// gridStore builds cols columns of rows cells, every cell eight cells wide.
func gridStore(t *testing.T, cols, rows int) *store.Store {
	t.Helper()
	columns := make([]*store.Column, cols)
	for c := range columns {
		values := make([]string, rows)
		for r := range values {
			values[r] = fmt.Sprintf("r%03dc%03d", r, c)
		}
		columns[c] = store.NewColumn(fmt.Sprintf("c%d", c), store.KindString, values, nil)
	}
	s, err := store.New(columns)
	require.NoError(t, err)
	return s
}

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(80, 24)
	assert.Equal(t, 79, l.TableWidth)
	assert.Equal(t, 22, l.TableHeight)

	l = ComputeLayout(0, 1)
	assert.Equal(t, 0, l.TableWidth)
	assert.Equal(t, MinTableHeight, l.TableHeight)
}

func TestVisibleNameAndFit(t *testing.T) {
	assert.Equal(t, "name", VisibleName("name", 10))
	assert.Equal(t, "lo...", VisibleName("longname", 5))
	assert.Equal(t, "", VisibleName("name", 2))
	assert.Equal(t, "abc", Fit("abc", 3))
	assert.Equal(t, "ab…", Fit("abcd", 3))
	assert.Equal(t, "", Fit("abcd", 0))
}

func TestBuildIndex(t *testing.T) {
	s := gridStore(t, 1, 1001)
	tbl := NewTable(s, store.Rows{9, 99, 999, 1000}, TableOptions{ShowIndex: true})
	tbl.SetViewport(40, 3)

	idx := tbl.Index()
	assert.Equal(t, []string{"10", "100", "1000"}, idx.Cells)
	assert.Equal(t, 4, idx.Width)
	assert.Equal(t, -1, idx.Column)

	tbl.LastRow()
	assert.Equal(t, 1, tbl.RowOffset())
	assert.Equal(t, []string{"100", "1000", "1001"}, tbl.Index().Cells)

	small := NewTable(s, store.Rows{0, 1}, TableOptions{ShowIndex: true})
	small.SetViewport(40, 5)
	assert.Equal(t, []string{"1", "2"}, small.Index().Cells)
	assert.Equal(t, MinIndexWidth, small.Index().Width, "index is at least three cells wide")
}

func TestBuildIndexAfterWindowedLoad(t *testing.T) {
	s := gridStore(t, 1, 2)
	tbl := NewTable(s, store.Rows{0, 1}, TableOptions{ShowIndex: true, FirstRow: 3})
	tbl.SetViewport(40, 5)
	assert.Equal(t, []string{"4", "5"}, tbl.Index().Cells)

	tail := NewTable(s, store.Rows{1}, TableOptions{ShowIndex: true, FirstRow: 998})
	tail.SetViewport(40, 5)
	assert.Equal(t, []string{"1000"}, tail.Index().Cells)
	assert.Equal(t, 4, tail.Index().Width)
}

func TestBuildIndexLengthFollowsWindow(t *testing.T) {
	s := gridStore(t, 1, 50)
	rows := store.All(50)
	for _, height := range []int{1, 7, 50, 80} {
		tbl := NewTable(s, rows, TableOptions{})
		tbl.SetViewport(20, height)
		for _, target := range []int{0, 13, 49} {
			tbl.SelectCell(target, 0)
			idx := tbl.BuildIndex()
			require.Len(t, idx.Cells, min(height, len(rows)-tbl.RowOffset()))
			for i, label := range idx.Cells {
				assert.Equal(t, fmt.Sprint(rows[tbl.RowOffset()+i]+1), label)
			}
		}
	}
}

func TestColumnWidths(t *testing.T) {
	s, err := store.New([]*store.Column{
		store.NewColumn("a_long_column_name", store.KindString, []string{"x"}, nil),
		store.NewColumn("b", store.KindString, []string{strings.Repeat("y", 40)}, nil),
	})
	require.NoError(t, err)

	tbl := NewTable(s, store.All(1), TableOptions{MaxColumnWidth: 20, ColumnMargin: 1})
	tbl.SetViewport(200, 5)
	cols := tbl.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, 19, cols[0].Width, "name width plus margin")
	assert.Equal(t, 20, cols[1].Width, "capped")
	assert.Equal(t, []string{strings.Repeat("y", 19) + "…"}, cols[1].Cells)

	tbl.MoveColumns(1)
	tbl.Expand()
	assert.Equal(t, StatusExpanded, tbl.Status(1))
	assert.Equal(t, 41, tbl.Columns()[1].Width, "expanded columns are not capped")
	assert.Equal(t, []int{0, 20}, tbl.ColumnX())
}

func TestHorizontalScrolling(t *testing.T) {
	s := gridStore(t, 5, 3)
	tbl := NewTable(s, store.All(3), TableOptions{})
	tbl.SetViewport(30, 3)

	cols := tbl.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, 3, tbl.FullyVisible())
	assert.True(t, cols[3].Partial)
	assert.Equal(t, 3, cols[3].Width, "partial column gets the remaining width")

	tbl.MoveColumns(2)
	assert.Equal(t, 0, tbl.ColumnOffset())
	tbl.MoveColumns(1)
	assert.Equal(t, 3, tbl.CursorColumn())
	assert.Equal(t, 1, tbl.ColumnOffset(), "scrolls just enough to show the cursor fully")

	tbl.MoveColumns(-3)
	assert.Equal(t, 0, tbl.ColumnOffset())
	tbl.MoveColumns(-1)
	assert.Equal(t, 0, tbl.CursorColumn())
}

func TestLastColumnIsFullyVisible(t *testing.T) {
	for _, width := range []int{10, 25, 30, 31, 44, 100} {
		t.Run(fmt.Sprint(width), func(t *testing.T) {
			s := gridStore(t, 7, 2)
			tbl := NewTable(s, store.All(2), TableOptions{ShowIndex: width > 30})
			tbl.SetViewport(width, 2)
			tbl.LastColumn()

			assert.Equal(t, 6, tbl.CursorColumn())
			cols := tbl.Columns()
			require.NotEmpty(t, cols)
			last := cols[len(cols)-1]
			assert.Equal(t, 6, last.Column)
			if width-tbl.IndexWidth() >= 9 {
				assert.False(t, last.Partial)
				assert.Equal(t, 8, last.Width)
				x := tbl.ColumnX()[len(cols)-1]
				assert.LessOrEqual(t, x+last.Width, width)
			}

			tbl.FirstColumn()
			assert.Equal(t, 0, tbl.CursorColumn())
			assert.Equal(t, 0, tbl.ColumnOffset())
		})
	}
}

func TestCollapseMovesCursor(t *testing.T) {
	s := gridStore(t, 5, 2)
	tbl := NewTable(s, store.All(2), TableOptions{})
	tbl.SetViewport(80, 2)

	tbl.MoveColumns(1)
	tbl.Collapse()
	assert.Equal(t, StatusCollapsed, tbl.Status(1))
	assert.Equal(t, 2, tbl.CursorColumn(), "moves right first")

	cols := tbl.Columns()
	assert.Equal(t, CollapsedName, cols[1].Name)
	assert.Equal(t, CollapsedWidth, cols[1].Width)
	assert.Equal(t, []string{CollapsedMarker, CollapsedMarker}, cols[1].Cells)

	tbl.LastColumn()
	tbl.Collapse()
	assert.Equal(t, 3, tbl.CursorColumn(), "falls back to the left")

	tbl.MoveColumns(-2)
	assert.Equal(t, 1, tbl.CursorColumn(), "collapsed columns stay reachable")
	tbl.Collapse()
	assert.Equal(t, StatusNormal, tbl.Status(1))
	assert.Equal(t, 1, tbl.CursorColumn())
}

func TestExpandCycle(t *testing.T) {
	s := gridStore(t, 3, 1)
	tbl := NewTable(s, store.All(1), TableOptions{})
	tbl.SetViewport(80, 1)

	tbl.Expand()
	assert.Equal(t, StatusExpanded, tbl.Status(0))
	tbl.Expand()
	assert.Equal(t, StatusCollapsed, tbl.Status(0))
	assert.Equal(t, 1, tbl.CursorColumn())

	tbl.MoveColumns(-1)
	tbl.Expand()
	assert.Equal(t, StatusExpanded, tbl.Status(0))
	tbl.Collapse()
	assert.Equal(t, StatusCollapsed, tbl.Status(0))
}

func TestAllCollapsedKeepsCursor(t *testing.T) {
	s := gridStore(t, 2, 1)
	tbl := NewTable(s, store.All(1), TableOptions{})
	tbl.SetViewport(80, 1)
	tbl.Collapse()
	assert.Equal(t, 1, tbl.CursorColumn())
	tbl.Collapse()
	assert.Equal(t, 1, tbl.CursorColumn(), "no open column to move to")
	assert.Equal(t, StatusCollapsed, tbl.Status(0))
	assert.Equal(t, StatusCollapsed, tbl.Status(1))
}

func TestSetRowsDropsCachesAndClamps(t *testing.T) {
	s, err := store.New([]*store.Column{
		store.NewColumn("c", store.KindString, []string{"a", "b", "a", "a", "c"}, nil),
	})
	require.NoError(t, err)
	tbl := NewTable(s, store.All(5), TableOptions{})
	tbl.SetViewport(20, 3)
	tbl.LastRow()
	assert.Equal(t, 4, tbl.CursorRow())
	assert.Equal(t, []filter.Bucket{{Value: "a", Count: 3}, {Value: "b", Count: 1}, {Value: "c", Count: 1}}, tbl.Histogram(0))

	tbl.SetHits(&filter.Hits{})
	tbl.SetRows(store.Rows{1, 4})
	assert.Equal(t, 1, tbl.CursorRow())
	assert.Nil(t, tbl.Hits())
	assert.Equal(t, []filter.Bucket{{Value: "b", Count: 1}, {Value: "c", Count: 1}}, tbl.Histogram(0))

	tbl.SetRows(nil)
	assert.Equal(t, 0, tbl.CursorRow())
	assert.Equal(t, -1, tbl.SelectedRow())
	assert.Empty(t, tbl.Columns()[0].Cells)
}

func TestPositionRestore(t *testing.T) {
	s := gridStore(t, 6, 40)
	tbl := NewTable(s, store.All(40), TableOptions{})
	tbl.SetViewport(30, 10)
	tbl.SelectCell(25, 4)
	saved := tbl.Position()

	tbl.SetRows(store.Rows{0, 1})
	assert.Equal(t, 1, tbl.CursorRow())

	tbl.SetRows(store.All(40))
	tbl.Restore(saved)
	assert.Equal(t, saved, tbl.Position())
}

func TestRandomNavigationKeepsCursorInBounds(t *testing.T) {
	s := gridStore(t, 9, 57)
	rng := rand.New(rand.NewSource(7))
	subsets := []store.Rows{store.All(57), {3, 8, 21}, {40}, nil}

	tbl := NewTable(s, subsets[0], TableOptions{MaxColumnWidth: 6, ColumnMargin: 1})
	tbl.SetViewport(35, 8)
	ops := []func(){
		func() { tbl.MoveRows(1) },
		func() { tbl.MoveRows(-1) },
		func() { tbl.MoveColumns(1) },
		func() { tbl.MoveColumns(-1) },
		func() { tbl.Page(1) },
		func() { tbl.Page(-1) },
		tbl.FirstRow,
		tbl.LastRow,
		tbl.FirstColumn,
		tbl.LastColumn,
		tbl.Expand,
		tbl.Collapse,
		tbl.ToggleIndex,
		func() { tbl.SetViewport(rng.Intn(60), 1+rng.Intn(20)) },
		func() { tbl.SetRows(subsets[rng.Intn(len(subsets))]) },
	}

	for i := 0; i < 2000; i++ {
		ops[rng.Intn(len(ops))]()

		rows := len(tbl.Rows())
		if rows == 0 {
			require.Equal(t, 0, tbl.CursorRow(), "step %d", i)
		} else {
			require.GreaterOrEqual(t, tbl.CursorRow(), 0, "step %d", i)
			require.Less(t, tbl.CursorRow(), rows, "step %d", i)
			require.GreaterOrEqual(t, tbl.SelectedRow(), 0, "step %d", i)
			require.Less(t, tbl.SelectedRow(), tbl.Height(), "step %d", i)
		}
		require.GreaterOrEqual(t, tbl.CursorColumn(), 0, "step %d", i)
		require.Less(t, tbl.CursorColumn(), s.NumColumns(), "step %d", i)
		require.GreaterOrEqual(t, tbl.SelectedColumn(), 0, "cursor column is rendered at step %d", i)
		require.LessOrEqual(t, tbl.ColumnOffset(), tbl.CursorColumn(), "step %d", i)
	}
}

func TestRecordNavigation(t *testing.T) {
	s := gridStore(t, 3, 5)
	rec := NewRecord(s, store.Rows{0, 2, 4}, 1, 40, 2)
	assert.Equal(t, 2, rec.OriginalRow())
	assert.Equal(t, 3, rec.Total())

	rec.MoveRow(5)
	assert.Equal(t, 2, rec.Row(), "bounded by the subset")
	rec.MoveRow(-10)
	assert.Equal(t, 0, rec.Row())
	rec.LastRow()
	assert.Equal(t, 4, rec.OriginalRow())

	rec.MoveField(1)
	rec.MoveField(1)
	assert.Equal(t, 2, rec.Field())
	assert.Equal(t, 1, rec.FieldOffset())
	assert.Equal(t, 1, rec.SelectedField())
	assert.Equal(t, "r004c002", rec.Value())

	cols := rec.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"c1", "c2"}, cols[0].Cells)
	assert.Equal(t, []string{"r004c001", "r004c002"}, cols[1].Cells)

	rec.PageField(-1)
	assert.Equal(t, 0, rec.Field())
	assert.Equal(t, 0, rec.FieldOffset())
	rec.FirstRow()
	assert.Equal(t, 0, rec.OriginalRow())
}

func TestRecordEmptySubset(t *testing.T) {
	s := gridStore(t, 2, 2)
	rec := NewRecord(s, nil, 3, 40, 5)
	assert.Equal(t, -1, rec.OriginalRow())
	assert.Equal(t, "", rec.Value())
	cols := rec.Columns()
	require.Len(t, cols, 2)
	assert.Empty(t, cols[0].Cells)
}

func histogramFixture() *Histogram {
	buckets := []filter.Bucket{
		{Value: "a", Count: 4},
		{Value: "b", Count: 3},
		{Value: "c", Count: 1},
		{Value: "d", Count: 1},
		{Value: "e", Count: 1},
	}
	return NewHistogram(0, "letter", buckets, 40, 2)
}

func TestHistogramSelection(t *testing.T) {
	h := histogramFixture()
	assert.Equal(t, NoBucket, h.Selected())
	_, ok := h.SelectedBucket()
	assert.False(t, ok)

	h.Move(-1)
	assert.Equal(t, NoBucket, h.Selected(), "moving up with nothing selected does nothing")
	h.Move(1)
	assert.Equal(t, 0, h.Selected())
	h.Move(2)
	assert.Equal(t, 2, h.Selected())
	assert.Equal(t, 1, h.Offset())
	assert.Equal(t, 1, h.SelectedRow())

	b, ok := h.SelectedBucket()
	require.True(t, ok)
	assert.Equal(t, "c", b.Value)

	h.Move(-3)
	assert.Equal(t, NoBucket, h.Selected(), "moving up past the first bucket clears the selection")

	h.Last()
	assert.Equal(t, 4, h.Selected())
	assert.Equal(t, 3, h.Offset())
	h.First()
	assert.Equal(t, 0, h.Offset())
}

func TestHistogramPaging(t *testing.T) {
	h := histogramFixture()
	h.Page(1)
	assert.Equal(t, 2, h.Offset())
	assert.Equal(t, NoBucket, h.Selected())
	h.Page(5)
	assert.Equal(t, 3, h.Offset(), "clamped to the last full page")
	h.Page(-5)
	assert.Equal(t, 0, h.Offset())

	h.Move(1)
	h.Page(1)
	assert.Equal(t, 2, h.Offset())
	assert.Equal(t, 2, h.Selected())
	h.Page(1)
	assert.Equal(t, 3, h.Offset())
	assert.Equal(t, 4, h.Selected())
	h.Page(-1)
	assert.Equal(t, 1, h.Offset())
	assert.Equal(t, 2, h.Selected(), "selection stays inside the window")
}

func TestHistogramColumns(t *testing.T) {
	h := histogramFixture()
	cols := h.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"40% 4", "30% 3"}, cols[0].Cells)
	assert.Equal(t, []string{"a", "b"}, cols[1].Cells)
	assert.Equal(t, "letter", cols[1].Name)
	assert.Equal(t, 10, h.Total())

	assert.Equal(t, "33% 1", CountLabel(1, 3))
	assert.Equal(t, "67% 2", CountLabel(2, 3))
	assert.Equal(t, "0% 0", CountLabel(0, 0))

	empty := NewHistogram(0, "x", nil, 40, 5)
	empty.Move(1)
	empty.Page(1)
	assert.Equal(t, NoBucket, empty.Selected())
	assert.Empty(t, empty.Columns()[0].Cells)
}
