package series

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"
)

// Field metadata keys of arrow extension types
const (
	extensionNameKey     = "ARROW:extension:name"
	extensionMetadataKey = "ARROW:extension:metadata"

	intervalExtension = "pandas.interval"
	defaultClosed     = "right"
)

// Interval is the decoded value of a pandas interval (arrow struct left/right)
type Interval struct {
	Left   any
	Right  any
	Closed string
}

// ValueAt converts the element at pos into a Go value. Dictionary (categorical)
// elements are decoded through their dictionary, timestamps and dates become
// time.Time, lists become []any and structs become map[string]any. Types
// without a dedicated conversion fall back to the arrow string representation.
func ValueAt(arr arrow.Array, pos int) any {
	if arr == nil || pos < 0 || pos >= arr.Len() || arr.IsNull(pos) {
		return nil
	}

	switch a := arr.(type) {
	case *array.String:
		return a.Value(pos)
	case *array.LargeString:
		return a.Value(pos)
	case *array.Binary:
		return append([]byte(nil), a.Value(pos)...)
	case *array.Boolean:
		return a.Value(pos)
	case *array.Int8:
		return a.Value(pos)
	case *array.Int16:
		return a.Value(pos)
	case *array.Int32:
		return a.Value(pos)
	case *array.Int64:
		return a.Value(pos)
	case *array.Uint8:
		return a.Value(pos)
	case *array.Uint16:
		return a.Value(pos)
	case *array.Uint32:
		return a.Value(pos)
	case *array.Uint64:
		return a.Value(pos)
	case *array.Float16:
		return a.Value(pos).Float32()
	case *array.Float32:
		return a.Value(pos)
	case *array.Float64:
		return a.Value(pos)
	case *array.Date32:
		return a.Value(pos).ToTime().UTC()
	case *array.Date64:
		return a.Value(pos).ToTime().UTC()
	case *array.Timestamp:
		return timestampValue(a, pos)
	case *array.Duration:
		unit := a.DataType().(*arrow.DurationType).Unit
		return time.Duration(a.Value(pos)) * unit.Multiplier()
	case *array.Dictionary:
		return ValueAt(a.Dictionary(), a.GetValueIndex(pos))
	case *array.Struct:
		return structValue(a, pos)
	case array.ExtensionArray:
		v := ValueAt(a.Storage(), pos)
		if iv, ok := v.(Interval); ok && a.ExtensionType().ExtensionName() == intervalExtension {
			if closed := parseClosed(a.ExtensionType().Serialize()); closed != "" {
				iv.Closed = closed
			}
			return iv
		}
		return v
	case array.ListLike:
		start, end := a.ValueOffsets(pos)
		values := a.ListValues()
		out := make([]any, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, ValueAt(values, int(i)))
		}
		return out
	default:
		return arr.ValueStr(pos)
	}
}

func timestampValue(a *array.Timestamp, pos int) any {
	ts := a.DataType().(*arrow.TimestampType)
	toTime, err := ts.GetToTimeFunc()
	if err != nil {
		return a.ValueStr(pos)
	}
	return toTime(a.Value(pos))
}

// structValue decodes a struct element; left/right structs become an Interval
func structValue(a *array.Struct, pos int) any {
	st := a.DataType().(*arrow.StructType)
	if left, ok := st.FieldIdx("left"); ok {
		if right, ok := st.FieldIdx("right"); ok && st.NumFields() == 2 {
			return Interval{
				Left:   ValueAt(a.Field(left), pos),
				Right:  ValueAt(a.Field(right), pos),
				Closed: defaultClosed,
			}
		}
	}

	out := make(map[string]any, st.NumFields())
	for i, f := range st.Fields() {
		out[f.Name] = ValueAt(a.Field(i), pos)
	}
	return out
}

// IntervalClosed reads the closed side of a pandas interval field from its
// extension metadata. It returns "" for any other field.
func IntervalClosed(md arrow.Metadata) string {
	i := md.FindKey(extensionNameKey)
	if i < 0 || md.Values()[i] != intervalExtension {
		return ""
	}
	j := md.FindKey(extensionMetadataKey)
	if j < 0 {
		return ""
	}
	return parseClosed(md.Values()[j])
}

func parseClosed(serialized string) string {
	var meta struct {
		Closed string `json:"closed"`
	}
	if err := json.Unmarshal([]byte(serialized), &meta); err != nil {
		return ""
	}
	switch meta.Closed {
	case "left", "right", "both", "neither":
		return meta.Closed
	default:
		return ""
	}
}

// DictionaryValues returns the decoded category list of a dictionary column.
// It reports false when the column is not dictionary encoded or has no chunks.
func DictionaryValues(chunked *arrow.Chunked) ([]any, bool) {
	if _, ok := chunked.DataType().(*arrow.DictionaryType); !ok {
		return nil, false
	}
	for _, chunk := range chunked.Chunks() {
		dict, ok := chunk.(*array.Dictionary)
		if !ok {
			continue
		}
		values := dict.Dictionary()
		out := make([]any, values.Len())
		for i := range out {
			out[i] = ValueAt(values, i)
		}
		return out, true
	}
	return nil, false
}
