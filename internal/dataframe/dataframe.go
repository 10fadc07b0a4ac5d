// Package dataframe adapts a pandas DataFrame serialized as Arrow IPC into a
// row/column addressable grid for rendering.
//
// The grid has a band of header rows (one per column level) and a band of
// header columns (one per index level) around the data cells:
//
//	blank   | columns
//	--------+--------
//	index   | data
//
// A Quiver is immutable after construction. AddRows builds a successor and
// leaves both operands untouched.
package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/quiver/internal/series"
)

// FieldKind tells index fields from data fields in the field lookup
type FieldKind int

const (
	// IndexField is an index level, keyed by level position
	IndexField FieldKind = iota
	// DataField is a data column, keyed by column position
	DataField
)

// FieldKey identifies an arrow field by kind and position
type FieldKey struct {
	Kind     FieldKind
	Position int
}

func (k FieldKey) String() string {
	if k.Kind == IndexField {
		return fmt.Sprintf("index[%d]", k.Position)
	}
	return fmt.Sprintf("data[%d]", k.Position)
}

// Styler carries the display overrides of a pandas Styler
type Styler struct {
	UUID          string
	Caption       *string
	Styles        *string
	DisplayValues *Quiver
}

// Dimensions is the logical size of the grid
type Dimensions struct {
	HeaderRows    int
	HeaderColumns int
	DataRows      int
	DataColumns   int
	Rows          int
	Columns       int
}

// Quiver is the table adapter
type Quiver struct {
	index      []series.Series
	indexNames []string
	columns    [][]string
	data       arrow.Table
	dataCols   []*series.Arrow
	types      Types
	fields     map[FieldKey]arrow.Field
	styler     *Styler

	fingerprint uint64
	opts        *options
}

// Index returns the index levels
func (q *Quiver) Index() []series.Series {
	return append([]series.Series(nil), q.index...)
}

// IndexNames returns the display name of every index level
func (q *Quiver) IndexNames() []string {
	return append([]string(nil), q.indexNames...)
}

// Columns returns the column header levels
func (q *Quiver) Columns() [][]string {
	out := make([][]string, len(q.columns))
	for i, level := range q.columns {
		out[i] = append([]string(nil), level...)
	}
	return out
}

// Data returns the data table. No reference is added.
func (q *Quiver) Data() arrow.Table {
	return q.data
}

// Types returns the index and data type descriptors
func (q *Quiver) Types() Types {
	return q.types.clone()
}

// Fields returns the arrow fields by key
func (q *Quiver) Fields() map[FieldKey]arrow.Field {
	out := make(map[FieldKey]arrow.Field, len(q.fields))
	for k, f := range q.fields {
		out[k] = f
	}
	return out
}

// Field looks up one arrow field
func (q *Quiver) Field(key FieldKey) (arrow.Field, bool) {
	f, ok := q.fields[key]
	return f, ok
}

// Styler returns the styler, if one was attached
func (q *Quiver) Styler() (Styler, bool) {
	if q.styler == nil {
		return Styler{}, false
	}
	return *q.styler, true
}

// CSSID returns the table element id, empty without a styler
func (q *Quiver) CSSID() string {
	if q.styler == nil || q.styler.UUID == "" {
		return ""
	}
	return "T_" + q.styler.UUID
}

// CSSStyles returns the styler CSS, empty without one
func (q *Quiver) CSSStyles() string {
	if q.styler == nil || q.styler.Styles == nil {
		return ""
	}
	return *q.styler.Styles
}

// Caption returns the styler caption, empty without one
func (q *Quiver) Caption() string {
	if q.styler == nil || q.styler.Caption == nil {
		return ""
	}
	return *q.styler.Caption
}

// Fingerprint identifies the payload(s) the instance was built from
func (q *Quiver) Fingerprint() uint64 {
	return q.fingerprint
}

// Dimensions computes the grid size. An empty table still reports one
// header row and one header column.
func (q *Quiver) Dimensions() Dimensions {
	headerColumns := len(q.index)
	if headerColumns == 0 {
		headerColumns = len(q.types.Index)
	}
	if headerColumns == 0 {
		headerColumns = 1
	}

	headerRows := len(q.columns)
	if headerRows == 0 {
		headerRows = 1
	}

	dataRows := int(q.data.NumRows())
	dataColumns := int(q.data.NumCols())
	if dataColumns == 0 && len(q.columns) > 0 {
		dataColumns = len(q.columns[0])
	}

	return Dimensions{
		HeaderRows:    headerRows,
		HeaderColumns: headerColumns,
		DataRows:      dataRows,
		DataColumns:   dataColumns,
		Rows:          headerRows + dataRows,
		Columns:       headerColumns + dataColumns,
	}
}

// IsEmpty reports whether the table has no index levels, no column levels and no data
func (q *Quiver) IsEmpty() bool {
	d := q.Dimensions()
	return len(q.index) == 0 && len(q.columns) == 0 && d.DataRows == 0 && d.DataColumns == 0
}

// Release drops the references the instance holds on arrow memory
func (q *Quiver) Release() {
	for _, level := range q.index {
		level.Release()
	}
	for _, col := range q.dataCols {
		col.Release()
	}
	if q.data != nil {
		q.data.Release()
	}
	if q.styler != nil && q.styler.DisplayValues != nil {
		q.styler.DisplayValues.Release()
	}
}

func (q *Quiver) retain() {
	for _, level := range q.index {
		if r, ok := level.(interface{ Retain() }); ok {
			r.Retain()
		}
	}
	for _, col := range q.dataCols {
		col.Retain()
	}
	q.data.Retain()
	if q.styler != nil && q.styler.DisplayValues != nil {
		q.styler.DisplayValues.retain()
	}
}

// clone returns a logical copy sharing all structures
func (q *Quiver) clone() *Quiver {
	q.retain()
	c := *q
	return &c
}

func (q *Quiver) String() string {
	d := q.Dimensions()
	return fmt.Sprintf("Quiver[%dx%d] (index levels=%d, column levels=%d, styled=%t)",
		d.DataRows, d.DataColumns, len(q.index), len(q.columns), q.styler != nil)
}
