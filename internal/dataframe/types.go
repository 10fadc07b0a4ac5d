package dataframe

import (
	"github.com/paveg/quiver/internal/schema"
)

// Meta is the optional metadata attached to a Type
type Meta struct {
	Range       *schema.RangeIndex      // RangeIndex parameters
	Categorical *schema.CategoricalMeta // category count and ordering
	Extra       map[string]any          // anything else pandas recorded (timezone, precision, ...)
}

// Type describes one index level or data column
type Type struct {
	PandasType string
	NumpyType  string
	Meta       *Meta
}

// Types holds the type descriptors parallel to the index levels and data columns
type Types struct {
	Index []Type
	Data  []Type
}

// headerType is the content type of every column header cell
var headerType = Type{PandasType: schema.PandasTypeUnicode, NumpyType: schema.NumpyTypeObject}

// TypeName returns the name used to compare and report types.
// Period and interval types keep their name in the numpy type.
func TypeName(t Type) string {
	if t.PandasType == schema.NumpyTypeObject {
		return t.NumpyType
	}
	return t.PandasType
}

// IsRange reports whether the type describes a RangeIndex
func (t Type) IsRange() bool {
	return t.PandasType == schema.PandasTypeRange
}

// IsCategorical reports whether the type describes a categorical
func (t Type) IsCategorical() bool {
	return t.PandasType == schema.PandasTypeCategorical
}

func (t Type) ordered() bool {
	return t.Meta != nil && t.Meta.Categorical != nil && t.Meta.Categorical.Ordered
}

func rangeType(r *schema.RangeIndex) Type {
	rc := *r
	return Type{
		PandasType: schema.PandasTypeRange,
		NumpyType:  schema.PandasTypeRange,
		Meta:       &Meta{Range: &rc},
	}
}

func typeOf(c schema.ColumnDescriptor) Type {
	t := Type{PandasType: c.PandasType, NumpyType: c.NumpyType}
	if cat, ok := c.Categorical(); ok {
		t.Meta = &Meta{Categorical: cat}
	} else if extra := c.Extra(); len(extra) > 0 {
		t.Meta = &Meta{Extra: extra}
	}
	return t
}

func typeNames(types []Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = TypeName(t)
	}
	return names
}

// sameIndexTypes compares level count, then type name, numpy type and
// categorical ordering per level
func sameIndexTypes(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if TypeName(a[i]) != TypeName(b[i]) || a[i].NumpyType != b[i].NumpyType {
			return false
		}
		if a[i].IsCategorical() && a[i].ordered() != b[i].ordered() {
			return false
		}
	}
	return true
}

func (t Types) clone() Types {
	return Types{
		Index: append([]Type(nil), t.Index...),
		Data:  append([]Type(nil), t.Data...),
	}
}
