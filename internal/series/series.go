// Package series provides the index level vectors of a table adapter: arrow
// backed levels read from the payload and generated RangeIndex levels.
package series

import (
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series is one index level
type Series interface {
	Name() string
	Len() int
	Value(index int) any
	DataType() arrow.DataType
	Release()
}

// Arrow is a Series backed by a chunked arrow column
type Arrow struct {
	name    string
	chunked *arrow.Chunked
	offsets []int  // start row of every chunk
	closed  string // interval side from the field metadata, if any
}

// NewArrow wraps a chunked column (retains a reference)
func NewArrow(name string, chunked *arrow.Chunked) *Arrow {
	chunked.Retain()
	offsets := make([]int, len(chunked.Chunks()))
	pos := 0
	for i, c := range chunked.Chunks() {
		offsets[i] = pos
		pos += c.Len()
	}
	return &Arrow{
		name:    name,
		chunked: chunked,
		offsets: offsets,
	}
}

// WithField applies the metadata of the field the column was read from.
// Interval columns take their closed side from it.
func (s *Arrow) WithField(field arrow.Field) *Arrow {
	s.closed = IntervalClosed(field.Metadata)
	return s
}

// FromSlice creates an arrow backed Series from Go values
func FromSlice[T any](name string, values []T, mem memory.Allocator) *Arrow {
	arr := NewArray(values, mem)
	defer arr.Release()
	chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
	defer chunked.Release()
	return NewArrow(name, chunked)
}

// NewArray creates an arrow array from a slice of values
func NewArray[T any](values []T, mem memory.Allocator) arrow.Array {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	// Use type switching to create appropriate Arrow array
	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", values))
	}
}

// Name returns the field name of the level
func (s *Arrow) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Arrow) Len() int {
	return s.chunked.Len()
}

// Value returns the Go value at the given row, nil for nulls or out of range rows
func (s *Arrow) Value(index int) any {
	arr, pos, ok := s.locate(index)
	if !ok {
		return nil
	}
	v := ValueAt(arr, pos)
	if iv, ok := v.(Interval); ok && s.closed != "" {
		iv.Closed = s.closed
		return iv
	}
	return v
}

func (s *Arrow) locate(index int) (arrow.Array, int, bool) {
	if index < 0 || index >= s.chunked.Len() {
		return nil, 0, false
	}
	// last chunk starting at or before index; it cannot be empty
	chunk := sort.Search(len(s.offsets), func(i int) bool { return s.offsets[i] > index }) - 1
	return s.chunked.Chunk(chunk), index - s.offsets[chunk], true
}

// DataType returns the Arrow data type
func (s *Arrow) DataType() arrow.DataType {
	return s.chunked.DataType()
}

// Chunked returns the underlying column (no reference is added)
func (s *Arrow) Chunked() *arrow.Chunked {
	return s.chunked
}

// Release releases the underlying Arrow memory
func (s *Arrow) Release() {
	if s.chunked != nil {
		s.chunked.Release()
	}
}

// Retain adds a reference to the underlying Arrow memory
func (s *Arrow) Retain() {
	if s.chunked != nil {
		s.chunked.Retain()
	}
}

// String returns a string representation of the series
func (s *Arrow) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.DataType(), s.name, s.Len())
}

// Range is a generated arithmetic sequence [start, stop) with the given step
type Range struct {
	name  string
	start int64
	stop  int64
	step  int64
}

// NewRange creates a RangeIndex level. A zero step yields an empty level.
func NewRange(name string, start, stop, step int64) *Range {
	return &Range{
		name:  name,
		start: start,
		stop:  stop,
		step:  step,
	}
}

// Name returns the display name of the range
func (r *Range) Name() string {
	return r.name
}

// Start returns the first value
func (r *Range) Start() int64 {
	return r.start
}

// Stop returns the exclusive bound
func (r *Range) Stop() int64 {
	return r.stop
}

// Step returns the increment
func (r *Range) Step() int64 {
	return r.step
}

// Len returns the number of generated values
func (r *Range) Len() int {
	if r.step == 0 {
		return 0
	}
	span := r.stop - r.start
	if r.step > 0 {
		span += r.step - 1
	} else {
		span += r.step + 1
	}
	n := span / r.step
	if n < 0 {
		return 0
	}
	return int(n)
}

// Value returns the generated value at the given row as an int64
func (r *Range) Value(index int) any {
	if index < 0 || index >= r.Len() {
		return nil
	}
	return r.start + int64(index)*r.step
}

// DataType returns int64, the type pandas uses for RangeIndex values
func (r *Range) DataType() arrow.DataType {
	return arrow.PrimitiveTypes.Int64
}

// Extend returns a new range continuing for n more values
func (r *Range) Extend(n int) *Range {
	return NewRange(r.name, r.start, r.stop+int64(n)*r.step, r.step)
}

// Release is a no-op; ranges own no Arrow memory
func (r *Range) Release() {}

// String returns a string representation of the range
func (r *Range) String() string {
	return fmt.Sprintf("RangeIndex(start=%d, stop=%d, step=%d)", r.start, r.stop, r.step)
}

// Values materializes a series into a slice
func Values(s Series) []any {
	out := make([]any, s.Len())
	for i := range out {
		out[i] = s.Value(i)
	}
	return out
}
