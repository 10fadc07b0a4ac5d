// Package testutil builds pandas-annotated Arrow payloads for tests.
//
// Frames are assembled the way pyarrow serializes a DataFrame: data fields first,
// then materialized index fields, with the pandas sidecar attached to the schema
// metadata.
//
// Example usage:
//
//	payload := testutil.NewFrame(nil).
//		Index("", testutil.Strings(nil, "i1", "i2")).
//		Column("c1", testutil.Strings(nil, "foo", "bar")).
//		IPC(t)
package testutil

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	qio "github.com/paveg/quiver/internal/io"
	"github.com/paveg/quiver/internal/schema"
)

// Col is one serialized column together with its pandas type descriptor
type Col struct {
	Array         arrow.Array
	PandasType    string
	NumpyType     string
	Metadata      any
	FieldMetadata arrow.Metadata
}

type level struct {
	field string
	name  any
	col   Col
}

// Frame accumulates index levels and data columns for a payload
type Frame struct {
	mem           memory.Allocator
	rangeIndex    *schema.RangeIndex
	index         []level
	columns       []level
	columnLevels  int
	metadataKey   string
	withoutSchema bool
}

// NewFrame starts an empty frame with one column header level
func NewFrame(mem memory.Allocator) *Frame {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Frame{
		mem:          mem,
		columnLevels: 1,
		metadataKey:  "pandas",
	}
}

// RangeIndex declares a RangeIndex; name may be nil
func (f *Frame) RangeIndex(start, stop, step int64, name any) *Frame {
	f.rangeIndex = &schema.RangeIndex{
		Kind:  schema.PandasTypeRange,
		Name:  name,
		Start: start,
		Stop:  stop,
		Step:  step,
	}
	return f
}

// Index adds a materialized index level. An empty name produces the
// synthetic unnamed field name.
func (f *Frame) Index(name string, col Col) *Frame {
	field := name
	var display any = name
	if name == "" {
		field = schema.UnnamedIndexField(len(f.index))
		display = nil
	}
	f.index = append(f.index, level{field: field, name: display, col: col})
	return f
}

// Column adds a data column
func (f *Frame) Column(field string, col Col) *Frame {
	f.columns = append(f.columns, level{field: field, name: field, col: col})
	return f
}

// ColumnLevels sets the number of declared column header levels
func (f *Frame) ColumnLevels(n int) *Frame {
	f.columnLevels = n
	return f
}

// MetadataKey changes the schema metadata key the sidecar is stored under
func (f *Frame) MetadataKey(key string) *Frame {
	f.metadataKey = key
	return f
}

// WithoutSchema omits the pandas sidecar
func (f *Frame) WithoutSchema() *Frame {
	f.withoutSchema = true
	return f
}

// Sidecar returns the pandas metadata document for the frame
func (f *Frame) Sidecar() *schema.Schema {
	s := &schema.Schema{
		IndexColumns:  []schema.IndexDescriptor{},
		ColumnIndexes: []schema.ColumnDescriptor{},
		Columns:       []schema.ColumnDescriptor{},
		PandasVersion: "2.2.2",
	}

	for i := 0; i < f.columnLevels; i++ {
		s.ColumnIndexes = append(s.ColumnIndexes, schema.ColumnDescriptor{
			PandasType: schema.PandasTypeUnicode,
			NumpyType:  schema.NumpyTypeObject,
			Metadata:   rawJSON(nil),
		})
	}

	for _, c := range f.columns {
		s.Columns = append(s.Columns, descriptor(c))
	}

	if f.rangeIndex != nil {
		s.IndexColumns = append(s.IndexColumns, schema.IndexDescriptor{Range: f.rangeIndex})
	}
	for _, idx := range f.index {
		s.IndexColumns = append(s.IndexColumns, schema.IndexDescriptor{Field: idx.field})
		s.Columns = append(s.Columns, descriptor(idx))
	}

	return s
}

func descriptor(l level) schema.ColumnDescriptor {
	field := l.field
	return schema.ColumnDescriptor{
		Name:       l.name,
		FieldName:  &field,
		PandasType: l.col.PandasType,
		NumpyType:  l.col.NumpyType,
		Metadata:   rawJSON(l.col.Metadata),
	}
}

func rawJSON(v any) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Table assembles the arrow table with data fields before index fields
func (f *Frame) Table(tb testing.TB) arrow.Table {
	tb.Helper()

	var (
		fields []arrow.Field
		cols   []arrow.Column
		rows   int64 = -1
	)
	add := func(l level) {
		field := arrow.Field{Name: l.field, Type: l.col.Array.DataType(), Nullable: true, Metadata: l.col.FieldMetadata}
		chunked := arrow.NewChunked(field.Type, []arrow.Array{l.col.Array})
		defer chunked.Release()
		fields = append(fields, field)
		cols = append(cols, *arrow.NewColumn(field, chunked))
		if rows < 0 {
			rows = int64(l.col.Array.Len())
		}
	}
	for _, c := range f.columns {
		add(c)
	}
	for _, idx := range f.index {
		add(idx)
	}
	if rows < 0 {
		rows = 0
		if f.rangeIndex != nil {
			rows = int64(f.rangeIndex.Len())
		}
	}

	var md *arrow.Metadata
	if !f.withoutSchema {
		sidecar, err := f.Sidecar().Marshal()
		require.NoError(tb, err)
		meta := arrow.NewMetadata([]string{f.metadataKey}, []string{string(sidecar)})
		md = &meta
	}

	return array.NewTable(arrow.NewSchema(fields, md), cols, rows)
}

// IPC serializes the frame as an Arrow IPC stream payload
func (f *Frame) IPC(tb testing.TB) []byte {
	tb.Helper()

	table := f.Table(tb)
	defer table.Release()

	payload, err := qio.EncodeIPC(table)
	require.NoError(tb, err)
	return payload
}

// Strings builds a unicode column
func Strings(mem memory.Allocator, values ...string) Col {
	b := array.NewStringBuilder(allocator(mem))
	defer b.Release()
	b.AppendValues(values, nil)
	return Col{Array: b.NewArray(), PandasType: "unicode", NumpyType: "object"}
}

// Int64s builds an int64 column
func Int64s(mem memory.Allocator, values ...int64) Col {
	b := array.NewInt64Builder(allocator(mem))
	defer b.Release()
	b.AppendValues(values, nil)
	return Col{Array: b.NewArray(), PandasType: "int64", NumpyType: "int64"}
}

// Float64s builds a float64 column
func Float64s(mem memory.Allocator, values ...float64) Col {
	b := array.NewFloat64Builder(allocator(mem))
	defer b.Release()
	b.AppendValues(values, nil)
	return Col{Array: b.NewArray(), PandasType: "float64", NumpyType: "float64"}
}

// Bools builds a bool column
func Bools(mem memory.Allocator, values ...bool) Col {
	b := array.NewBooleanBuilder(allocator(mem))
	defer b.Release()
	b.AppendValues(values, nil)
	return Col{Array: b.NewArray(), PandasType: "bool", NumpyType: "bool"}
}

// Timestamps builds a naive nanosecond datetime column
func Timestamps(mem memory.Allocator, values ...time.Time) Col {
	b := array.NewTimestampBuilder(allocator(mem), &arrow.TimestampType{Unit: arrow.Nanosecond})
	defer b.Release()
	for _, v := range values {
		b.Append(arrow.Timestamp(v.UnixNano()))
	}
	return Col{Array: b.NewArray(), PandasType: "datetime", NumpyType: "datetime64[ns]"}
}

// Nulls builds a column of the null type, as pandas writes for all-None objects
func Nulls(n int) Col {
	return Col{Array: array.NewNull(n), PandasType: "empty", NumpyType: "object"}
}

// Categorical builds a dictionary encoded column over string categories
func Categorical(mem memory.Allocator, categories []string, codes []int8, ordered bool) Col {
	mem = allocator(mem)

	dict := array.NewStringBuilder(mem)
	defer dict.Release()
	dict.AppendValues(categories, nil)
	dictArr := dict.NewArray()
	defer dictArr.Release()

	idx := array.NewInt8Builder(mem)
	defer idx.Release()
	idx.AppendValues(codes, nil)
	idxArr := idx.NewArray()
	defer idxArr.Release()

	dt := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Int8,
		ValueType: arrow.BinaryTypes.String,
		Ordered:   ordered,
	}
	return Col{
		Array:      array.NewDictionaryArray(dt, idxArr, dictArr),
		PandasType: "categorical",
		NumpyType:  "int8",
		Metadata:   schema.CategoricalMeta{NumCategories: len(categories), Ordered: ordered},
	}
}

// Intervals builds an int64 interval column the way pandas serializes it:
// a left/right struct tagged with the pandas.interval extension metadata
func Intervals(mem memory.Allocator, closed string, bounds ...[2]int64) Col {
	dt := arrow.StructOf(
		arrow.Field{Name: "left", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "right", Type: arrow.PrimitiveTypes.Int64},
	)
	b := array.NewStructBuilder(allocator(mem), dt)
	defer b.Release()
	for _, bound := range bounds {
		b.Append(true)
		b.FieldBuilder(0).(*array.Int64Builder).Append(bound[0])
		b.FieldBuilder(1).(*array.Int64Builder).Append(bound[1])
	}

	return Col{
		Array:      b.NewArray(),
		PandasType: "object",
		NumpyType:  "interval[int64, " + closed + "]",
		FieldMetadata: arrow.NewMetadata(
			[]string{"ARROW:extension:name", "ARROW:extension:metadata"},
			[]string{"pandas.interval", `{"subtype": "int64", "closed": "` + closed + `"}`},
		),
	}
}

func allocator(mem memory.Allocator) memory.Allocator {
	if mem == nil {
		return memory.DefaultAllocator
	}
	return mem
}
