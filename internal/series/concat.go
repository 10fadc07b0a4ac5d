package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ConcatChunked appends the chunks of b after the chunks of a. The result owns
// its own references; neither input is modified.
func ConcatChunked(a, b *arrow.Chunked) (*arrow.Chunked, error) {
	if !arrow.TypeEqual(a.DataType(), b.DataType()) {
		return nil, fmt.Errorf("cannot concatenate %s with %s", a.DataType(), b.DataType())
	}
	chunks := make([]arrow.Array, 0, len(a.Chunks())+len(b.Chunks()))
	chunks = append(chunks, a.Chunks()...)
	chunks = append(chunks, b.Chunks()...)
	return arrow.NewChunked(a.DataType(), chunks), nil
}

// Concat appends the values of b to a, returning a new Series.
// Arrow levels require identical arrow types; ranges must be contiguous.
func Concat(a, b Series) (Series, error) {
	switch left := a.(type) {
	case *Arrow:
		right, ok := b.(*Arrow)
		if !ok {
			return nil, fmt.Errorf("cannot concatenate %T with %T", a, b)
		}
		chunked, err := ConcatChunked(left.chunked, right.chunked)
		if err != nil {
			return nil, err
		}
		defer chunked.Release()
		result := NewArrow(left.name, chunked)
		result.closed = left.closed
		return result, nil
	case *Range:
		right, ok := b.(*Range)
		if !ok {
			return nil, fmt.Errorf("cannot concatenate %T with %T", a, b)
		}
		if right.Len() > 0 && (left.stop != right.start || left.step != right.step) {
			return nil, fmt.Errorf("cannot concatenate non-contiguous ranges %s and %s", left, right)
		}
		return left.Extend(right.Len()), nil
	default:
		return nil, fmt.Errorf("unsupported series type %T", a)
	}
}
