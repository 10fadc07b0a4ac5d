package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	dferrors "github.com/paveg/quiver/internal/errors"
	"github.com/paveg/quiver/internal/series"
)

// AddRows appends the rows of other and returns the result as a new Quiver.
// Neither operand is modified. Columns present only in other are dropped.
func (q *Quiver) AddRows(other *Quiver) (*Quiver, error) {
	var result *Quiver
	err := q.opts.record(opAddRows, func() (int64, error) {
		var err error
		result, err = q.addRows(other)
		if err != nil {
			return 0, err
		}
		return int64(other.Dimensions().DataRows), nil
	})
	if err != nil {
		q.opts.debug("add rows failed", "op", opAddRows, "error", err)
		return nil, err
	}

	q.opts.debug("rows added", "op", opAddRows,
		"fingerprint", result.fingerprint, "dimensions", result.Dimensions())
	return result, nil
}

func (q *Quiver) addRows(other *Quiver) (*Quiver, error) {
	if q.styler != nil || other.styler != nil {
		return nil, dferrors.NewStylerUnsupportedError(opAddRows)
	}
	if other.IsEmpty() {
		return q.clone(), nil
	}
	if q.IsEmpty() {
		return other.clone(), nil
	}

	index, indexTypes, err := q.concatIndex(other)
	if err != nil {
		return nil, err
	}

	data, dataCols, err := q.concatData(other)
	if err != nil {
		for _, level := range index {
			level.Release()
		}
		return nil, err
	}

	return &Quiver{
		index:       index,
		indexNames:  q.indexNames,
		columns:     q.columns,
		data:        data,
		dataCols:    dataCols,
		types:       Types{Index: indexTypes, Data: append([]Type(nil), q.types.Data...)},
		fields:      q.fields,
		fingerprint: combineFingerprints(q.fingerprint, other.fingerprint),
		opts:        q.opts,
	}, nil
}

// concatIndex concatenates the index levels. A leading RangeIndex is owned
// by the receiver: it keeps its start and step and advances its stop.
func (q *Quiver) concatIndex(other *Quiver) ([]series.Series, []Type, error) {
	mismatch := func() *dferrors.DataFrameError {
		return dferrors.NewIndexTypeMismatchError(opAddRows, typeNames(other.types.Index), typeNames(q.types.Index))
	}
	if !sameIndexTypes(q.types.Index, other.types.Index) {
		return nil, nil, mismatch()
	}

	types := append([]Type(nil), q.types.Index...)

	if len(types) > 0 && types[0].IsRange() && len(q.index) > 0 {
		r, ok := q.index[0].(*series.Range)
		if !ok {
			return nil, nil, mismatch()
		}
		added := other.rowCount()
		extended := r.Extend(added)

		meta := *types[0].Meta
		rangeMeta := *meta.Range
		rangeMeta.Stop = extended.Stop()
		meta.Range = &rangeMeta
		types[0].Meta = &meta

		return []series.Series{extended}, types, nil
	}

	if len(q.index) != len(other.index) {
		return nil, nil, mismatch()
	}
	index := make([]series.Series, 0, len(q.index))
	for i := range q.index {
		level, err := series.Concat(q.index[i], other.index[i])
		if err != nil {
			for _, done := range index {
				done.Release()
			}
			e := mismatch()
			e.Cause = err
			return nil, nil, e
		}
		index = append(index, level)
	}
	return index, types, nil
}

// rowCount is the number of rows the index (or, without one, the data) holds
func (q *Quiver) rowCount() int {
	if len(q.index) > 0 {
		return q.index[0].Len()
	}
	return q.Dimensions().DataRows
}

// concatData concatenates the data columns of the receiver with the same
// positions of other. Type checks run before any chunk is touched.
func (q *Quiver) concatData(other *Quiver) (arrow.Table, []*series.Arrow, error) {
	for i, t := range q.types.Data {
		if i >= len(other.types.Data) {
			return nil, nil, dferrors.NewDataTypeMismatchError(opAddRows, q.columnName(i),
				fmt.Sprintf("appended data is missing column %d", i))
		}
		if TypeName(t) != TypeName(other.types.Data[i]) {
			return nil, nil, dferrors.NewDataTypeMismatchError(opAddRows, q.columnName(i),
				fmt.Sprintf("appended data must have the same type: received %s but expected %s",
					TypeName(other.types.Data[i]), TypeName(t)))
		}
	}

	n := len(q.types.Data)
	left, right := q.dataCols, other.dataCols
	if n == 0 || (len(left) == 0 && len(right) == 0) {
		rows := q.data.NumRows() + other.data.NumRows()
		return array.NewTable(arrow.NewSchema(nil, nil), nil, rows), nil, nil
	}

	fields := make([]arrow.Field, n)
	chunks := make([]*arrow.Chunked, n)
	for i := 0; i < n; i++ {
		switch {
		case len(left) == 0:
			fields[i] = other.data.Schema().Field(i)
		default:
			fields[i] = q.data.Schema().Field(i)
		}

		if len(left) > 0 && len(right) > 0 {
			if !arrow.TypeEqual(left[i].DataType(), right[i].DataType()) {
				return nil, nil, dferrors.NewDataTypeMismatchError(opAddRows, fields[i].Name,
					fmt.Sprintf("appended data must have the same arrow type: received %s but expected %s",
						right[i].DataType(), left[i].DataType()))
			}
		}
	}

	var rows int64
	for i := 0; i < n; i++ {
		switch {
		case len(left) == 0:
			chunks[i] = right[i].Chunked()
			chunks[i].Retain()
		case len(right) == 0:
			chunks[i] = left[i].Chunked()
			chunks[i].Retain()
		default:
			// types were checked above
			chunks[i], _ = series.ConcatChunked(left[i].Chunked(), right[i].Chunked())
		}
		rows = int64(chunks[i].Len())
	}

	cols := make([]arrow.Column, n)
	for i := range cols {
		cols[i] = *arrow.NewColumn(fields[i], chunks[i])
		chunks[i].Release()
	}
	data := array.NewTable(arrow.NewSchema(fields, nil), cols, rows)
	for i := range cols {
		cols[i].Release()
	}
	return data, dataSeries(data), nil
}

func (q *Quiver) columnName(i int) string {
	if len(q.columns) == 0 || i >= len(q.columns[0]) {
		return ""
	}
	return q.columns[len(q.columns)-1][i]
}
