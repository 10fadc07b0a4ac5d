package dataframe_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paveg/quiver/internal/dataframe"
	dferrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/series"
	"github.com/paveg/quiver/internal/testutil"
)

// snapshot captures everything observable about a Quiver
type snapshot struct {
	Dimensions  dataframe.Dimensions
	Index       [][]any
	IndexNames  []string
	Columns     [][]string
	Data        [][]any
	Types       dataframe.Types
	RangeStop   int64
	Fingerprint uint64
}

func takeSnapshot(t *testing.T, q *dataframe.Quiver) snapshot {
	t.Helper()

	s := snapshot{
		Dimensions:  q.Dimensions(),
		IndexNames:  q.IndexNames(),
		Columns:     q.Columns(),
		Types:       q.Types(),
		Fingerprint: q.Fingerprint(),
	}
	for _, level := range q.Index() {
		s.Index = append(s.Index, series.Values(level))
	}
	for row := 0; row < s.Dimensions.DataRows; row++ {
		values := make([]any, s.Dimensions.DataColumns)
		for col := range values {
			v, err := q.DataValue(row, col)
			require.NoError(t, err)
			values[col] = v
		}
		s.Data = append(s.Data, values)
	}
	if len(s.Types.Index) > 0 && s.Types.Index[0].IsRange() {
		s.RangeStop = s.Types.Index[0].Meta.Range.Stop
	}
	return s
}

func TestAddRows_RangeIndex(t *testing.T) {
	q := newQuiver(t, rangeFrame(0, 2, 1, 10, 20))

	result, err := q.AddRows(q)
	require.NoError(t, err)
	defer result.Release()

	require.Len(t, result.Index(), 1)
	assert.Equal(t, []any{int64(0), int64(1), int64(2), int64(3)}, series.Values(result.Index()[0]))

	types := result.Types()
	assert.Equal(t, int64(4), types.Index[0].Meta.Range.Stop)
	assert.Equal(t, int64(0), types.Index[0].Meta.Range.Start)
	assert.Equal(t, int64(1), types.Index[0].Meta.Range.Step)

	assert.Equal(t, 4, result.Dimensions().DataRows)
	for row, want := range []int64{10, 20, 10, 20} {
		v, err := result.DataValue(row, 0)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	// the receiver keeps its own range
	assert.Equal(t, int64(2), q.Types().Index[0].Meta.Range.Stop)
	assert.Equal(t, 2, q.Dimensions().DataRows)
}

func TestAddRows_RangeIdentityOwnedByReceiver(t *testing.T) {
	q := newQuiver(t, rangeFrame(10, 16, 2, 1, 2, 3))
	other := newQuiver(t, rangeFrame(100, 102, 1, 4, 5))

	result, err := q.AddRows(other)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t,
		[]any{int64(10), int64(12), int64(14), int64(16), int64(18)},
		series.Values(result.Index()[0]))
	assert.Equal(t, int64(20), result.Types().Index[0].Meta.Range.Stop)
}

func TestAddRows_RepeatedDoubling(t *testing.T) {
	current := newQuiver(t, rangeFrame(0, 6, 3, 1, 2))
	base := takeSnapshot(t, current)

	for i := 1; i <= 4; i++ {
		next, err := current.AddRows(current)
		require.NoError(t, err)
		t.Cleanup(next.Release)

		before := takeSnapshot(t, current)
		after := takeSnapshot(t, next)

		assert.Equal(t, 2*before.Dimensions.DataRows, after.Dimensions.DataRows)
		assert.Equal(t, base.Dimensions.DataColumns, after.Dimensions.DataColumns)
		assert.Equal(t, base.Columns, after.Columns)
		assert.Equal(t, base.Types.Data, after.Types.Data)
		assert.Equal(t, before.RangeStop+3*int64(before.Dimensions.DataRows), after.RangeStop)

		current = next
	}
	assert.Equal(t, 32, current.Dimensions().DataRows)
}

func TestAddRows_EmptyOperands(t *testing.T) {
	q := newQuiver(t, unicodeFrame())
	empty := newQuiver(t, emptyFrame())
	want := takeSnapshot(t, q)

	t.Run("append empty", func(t *testing.T) {
		result, err := q.AddRows(empty)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, want, takeSnapshot(t, result))
	})

	t.Run("append to empty", func(t *testing.T) {
		result, err := empty.AddRows(q)
		require.NoError(t, err)
		defer result.Release()
		assert.Equal(t, want, takeSnapshot(t, result))
	})

	t.Run("both empty", func(t *testing.T) {
		result, err := empty.AddRows(empty)
		require.NoError(t, err)
		defer result.Release()
		assert.True(t, result.IsEmpty())
	})

	// releasing a copy leaves the source intact
	assert.Equal(t, want, takeSnapshot(t, q))
}

func TestAddRows_Materialized(t *testing.T) {
	q := newQuiver(t, unicodeFrame())
	other := newQuiver(t, testutil.NewFrame(nil).
		Index("", testutil.Strings(nil, "i3")).
		Column("c1", testutil.Strings(nil, "baz")).
		Column("c2", testutil.Strings(nil, "3")))

	result, err := q.AddRows(other)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []any{"i1", "i2", "i3"}, series.Values(result.Index()[0]))
	assert.Equal(t, 3, result.Dimensions().DataRows)

	cell, err := result.Cell(3, 1)
	require.NoError(t, err)
	assert.Equal(t, "baz", cell.Content)
	assert.Equal(t, "data row2 col0", cell.CSSClass)
	require.NotNil(t, cell.Field)
	assert.Equal(t, "c1", cell.Field.Name)

	assert.Equal(t, q.Columns(), result.Columns())
	assert.Equal(t, q.IndexNames(), result.IndexNames())
	assert.NotEqual(t, q.Fingerprint(), result.Fingerprint())
}

func TestAddRows_DoesNotMutateOperands(t *testing.T) {
	q := newQuiver(t, unicodeFrame())
	other := newQuiver(t, testutil.NewFrame(nil).
		Index("", testutil.Strings(nil, "i3", "i4")).
		Column("c1", testutil.Strings(nil, "baz", "qux")).
		Column("c2", testutil.Strings(nil, "3", "4")).
		Column("c3", testutil.Strings(nil, "x", "y")))

	beforeQ := takeSnapshot(t, q)
	beforeOther := takeSnapshot(t, other)

	result, err := q.AddRows(other)
	require.NoError(t, err)
	result.Release()

	assert.Equal(t, beforeQ, takeSnapshot(t, q))
	assert.Equal(t, beforeOther, takeSnapshot(t, other))
}

func TestAddRows_DropsExtraColumns(t *testing.T) {
	q := newQuiver(t, rangeFrame(0, 2, 1, 1, 2))
	wide := newQuiver(t, testutil.NewFrame(nil).
		RangeIndex(0, 1, 1, nil).
		Column("a", testutil.Int64s(nil, 3)).
		Column("b", testutil.Strings(nil, "extra")))

	result, err := q.AddRows(wide)
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, 1, result.Dimensions().DataColumns)
	assert.Equal(t, 3, result.Dimensions().DataRows)
	assert.Equal(t, [][]string{{"a"}}, result.Columns())
	assert.Len(t, result.Types().Data, 1)
}

func TestAddRows_ToTableWithoutRows(t *testing.T) {
	noRows := newQuiver(t, testutil.NewFrame(nil).
		RangeIndex(0, 0, 1, nil).
		Column("a", testutil.Int64s(nil)))
	q := newQuiver(t, rangeFrame(0, 2, 1, 5, 6))

	result, err := noRows.AddRows(q)
	require.NoError(t, err)
	defer result.Release()

	d := result.Dimensions()
	assert.Equal(t, 2, d.DataRows)
	assert.Equal(t, 1, d.DataColumns)
	assert.Equal(t, []any{int64(0), int64(1)}, series.Values(result.Index()[0]))

	v, err := result.DataValue(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
}

func TestAddRows_IndexWithoutColumns(t *testing.T) {
	t.Run("range index", func(t *testing.T) {
		q := newQuiver(t, testutil.NewFrame(nil).RangeIndex(0, 2, 1, nil))

		result, err := q.AddRows(q)
		require.NoError(t, err)
		defer result.Release()

		got := takeSnapshot(t, result)
		assert.Equal(t, 4, got.Dimensions.DataRows)
		assert.Equal(t, [][]any{{int64(0), int64(1), int64(2), int64(3)}}, got.Index)
		assert.Equal(t, int64(4), got.RangeStop)

		cell, err := result.Cell(4, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), cell.Content)
	})

	t.Run("materialized index", func(t *testing.T) {
		first := newQuiver(t, testutil.NewFrame(nil).Index("k", testutil.Strings(nil, "a", "b")))
		second := newQuiver(t, testutil.NewFrame(nil).Index("k", testutil.Strings(nil, "c")))

		result, err := first.AddRows(second)
		require.NoError(t, err)
		defer result.Release()

		assert.Equal(t, 3, result.Dimensions().DataRows)
		assert.Equal(t, 2, first.Dimensions().DataRows)
		v, err := result.IndexValue(2, 0)
		require.NoError(t, err)
		assert.Equal(t, "c", v)
	})

	t.Run("columns on the appended side are dropped", func(t *testing.T) {
		indexOnly := newQuiver(t, testutil.NewFrame(nil).Index("k", testutil.Strings(nil, "a")))
		withColumns := newQuiver(t, testutil.NewFrame(nil).
			Index("k", testutil.Strings(nil, "b", "c")).
			Column("v", testutil.Int64s(nil, 1, 2)))

		result, err := indexOnly.AddRows(withColumns)
		require.NoError(t, err)
		defer result.Release()

		assert.Equal(t, dataframe.Dimensions{HeaderRows: 1, HeaderColumns: 1, DataRows: 3, Rows: 4, Columns: 1},
			result.Dimensions())
	})
}

func TestAddRows_Errors(t *testing.T) {
	t.Run("styler on either side", func(t *testing.T) {
		styled, err := dataframe.New(unicodeFrame().IPC(t), &dataframe.StylerPayload{
			UUID:          "s",
			DisplayValues: unicodeFrame().IPC(t),
		})
		require.NoError(t, err)
		defer styled.Release()
		plain := newQuiver(t, unicodeFrame())

		_, err = styled.AddRows(plain)
		assert.True(t, errors.Is(err, dferrors.ErrStylerUnsupported))
		_, err = plain.AddRows(styled)
		assert.True(t, errors.Is(err, dferrors.ErrStylerUnsupported))
	})

	t.Run("index types differ", func(t *testing.T) {
		q := newQuiver(t, unicodeFrame())
		other := newQuiver(t, testutil.NewFrame(nil).
			Index("", testutil.Int64s(nil, 1)).
			Column("c1", testutil.Strings(nil, "baz")).
			Column("c2", testutil.Strings(nil, "3")))

		_, err := q.AddRows(other)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dferrors.ErrIndexTypeMismatch))
		assert.Contains(t, err.Error(), "received [int64] but expected [unicode]")
	})

	t.Run("index level count differs", func(t *testing.T) {
		q := newQuiver(t, rangeFrame(0, 1, 1, 1))
		other := newQuiver(t, testutil.NewFrame(nil).
			Index("a", testutil.Strings(nil, "x")).
			Index("b", testutil.Strings(nil, "y")).
			Column("v", testutil.Int64s(nil, 2)))

		_, err := q.AddRows(other)
		assert.True(t, errors.Is(err, dferrors.ErrIndexTypeMismatch))
		assert.Contains(t, err.Error(), "received [unicode, unicode] but expected [range]")
	})

	t.Run("categorical ordering differs", func(t *testing.T) {
		frame := func(ordered bool) *testutil.Frame {
			return testutil.NewFrame(nil).
				Index("", testutil.Categorical(nil, []string{"a", "b"}, []int8{0, 1}, ordered)).
				Column("v", testutil.Int64s(nil, 1, 2))
		}
		q := newQuiver(t, frame(true))
		other := newQuiver(t, frame(false))

		_, err := q.AddRows(other)
		assert.True(t, errors.Is(err, dferrors.ErrIndexTypeMismatch))
	})

	t.Run("data types differ", func(t *testing.T) {
		q := newQuiver(t, rangeFrame(0, 1, 1, 1))
		other := newQuiver(t, testutil.NewFrame(nil).
			RangeIndex(0, 1, 1, nil).
			Column("a", testutil.Strings(nil, "one")))

		_, err := q.AddRows(other)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dferrors.ErrDataTypeMismatch))

		var dfErr *dferrors.DataFrameError
		require.ErrorAs(t, err, &dfErr)
		assert.Equal(t, "a", dfErr.Column)
	})

	t.Run("appended side has fewer columns", func(t *testing.T) {
		q := newQuiver(t, unicodeFrame())
		narrow := newQuiver(t, testutil.NewFrame(nil).
			Index("", testutil.Strings(nil, "i3")).
			Column("c1", testutil.Strings(nil, "baz")))

		_, err := q.AddRows(narrow)
		assert.True(t, errors.Is(err, dferrors.ErrDataTypeMismatch))
	})
}
