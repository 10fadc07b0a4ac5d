// Package schema decodes the pandas metadata sidecar that pyarrow attaches to
// serialized DataFrames. The sidecar names the index fields, the column order and
// the pandas/numpy type of every column.
package schema

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// UnnamedIndexPrefix marks index fields pyarrow generated for unnamed index levels
const UnnamedIndexPrefix = "__index_level_"

// Pandas type names with special handling
const (
	PandasTypeRange       = "range"
	PandasTypeCategorical = "categorical"
	PandasTypeUnicode     = "unicode"
	NumpyTypeObject       = "object"
)

// Schema is the decoded pandas sidecar
type Schema struct {
	IndexColumns  []IndexDescriptor  `json:"index_columns"`
	ColumnIndexes []ColumnDescriptor `json:"column_indexes"`
	Columns       []ColumnDescriptor `json:"columns"`
	PandasVersion string             `json:"pandas_version,omitempty"`
}

// ColumnDescriptor describes one serialized column or one column index level
type ColumnDescriptor struct {
	Name       any             `json:"name"`
	FieldName  *string         `json:"field_name"`
	PandasType string          `json:"pandas_type"`
	NumpyType  string          `json:"numpy_type"`
	Metadata   json.RawMessage `json:"metadata"`
}

// Field returns the arrow field name of the column, empty when unset
func (c ColumnDescriptor) Field() string {
	if c.FieldName == nil {
		return ""
	}
	return *c.FieldName
}

// CategoricalMeta is the metadata pandas stores for categorical columns
type CategoricalMeta struct {
	NumCategories int  `json:"num_categories"`
	Ordered       bool `json:"ordered"`
}

// Categorical decodes categorical metadata, if the column carries any
func (c ColumnDescriptor) Categorical() (*CategoricalMeta, bool) {
	if c.PandasType != PandasTypeCategorical || isNull(c.Metadata) {
		return nil, false
	}
	var meta CategoricalMeta
	if err := json.Unmarshal(c.Metadata, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

// Extra decodes free-form metadata such as timezone or decimal precision
func (c ColumnDescriptor) Extra() map[string]any {
	if isNull(c.Metadata) {
		return nil
	}
	var extra map[string]any
	if err := json.Unmarshal(c.Metadata, &extra); err != nil {
		return nil
	}
	return extra
}

// RangeIndex is the synthetic descriptor pandas writes for a RangeIndex
type RangeIndex struct {
	Kind  string `json:"kind"`
	Name  any    `json:"name"`
	Start int64  `json:"start"`
	Stop  int64  `json:"stop"`
	Step  int64  `json:"step"`
}

// Len returns the number of values the range generates
func (r RangeIndex) Len() int {
	if r.Step == 0 {
		return 0
	}
	n := (r.Stop - r.Start + r.Step - sign(r.Step)) / r.Step
	if n < 0 {
		return 0
	}
	return int(n)
}

func sign(v int64) int64 {
	if v < 0 {
		return -1
	}
	return 1
}

// IndexDescriptor is one entry of index_columns: either a field name or a RangeIndex
type IndexDescriptor struct {
	Field string
	Range *RangeIndex
}

// IsRange reports whether the descriptor is a RangeIndex
func (d IndexDescriptor) IsRange() bool {
	return d.Range != nil
}

// UnmarshalJSON accepts either a JSON string or a range object
func (d *IndexDescriptor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		d.Range = nil
		return json.Unmarshal(trimmed, &d.Field)
	}

	var r RangeIndex
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return fmt.Errorf("decoding index descriptor: %w", err)
	}
	if r.Kind != PandasTypeRange {
		return fmt.Errorf("unsupported index descriptor kind %q", r.Kind)
	}
	if r.Step == 0 {
		return fmt.Errorf("range index step must not be zero")
	}
	d.Field = ""
	d.Range = &r
	return nil
}

// MarshalJSON writes the descriptor in the pandas layout
func (d IndexDescriptor) MarshalJSON() ([]byte, error) {
	if d.Range != nil {
		r := *d.Range
		r.Kind = PandasTypeRange
		return json.Marshal(r)
	}
	return json.Marshal(d.Field)
}

// Parse decodes the JSON sidecar
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing pandas schema: %w", err)
	}
	return &s, nil
}

// Marshal encodes the schema as a pandas sidecar
func (s *Schema) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// IsIndexField reports whether a field name is declared as an index column
func (s *Schema) IsIndexField(field string) bool {
	for _, d := range s.IndexColumns {
		if !d.IsRange() && d.Field == field {
			return true
		}
	}
	return false
}

// RawColumns returns the non-index field names in schema order
func (s *Schema) RawColumns() []string {
	raw := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if s.IsIndexField(c.Field()) {
			continue
		}
		raw = append(raw, c.Field())
	}
	return raw
}

// Column finds the descriptor for a field name
func (s *Schema) Column(field string) (ColumnDescriptor, bool) {
	for _, c := range s.Columns {
		if c.Field() == field {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// ColumnLevels returns the number of column header levels declared
func (s *Schema) ColumnLevels() int {
	return len(s.ColumnIndexes)
}

// IndexName returns the display name of an index descriptor
func IndexName(d IndexDescriptor) string {
	if d.IsRange() {
		return DisplayName(d.Range.Name)
	}
	if strings.HasPrefix(d.Field, UnnamedIndexPrefix) {
		return ""
	}
	return d.Field
}

// UnnamedIndexField returns the synthetic field name pyarrow uses for index level k
func UnnamedIndexField(level int) string {
	return fmt.Sprintf("%s%d__", UnnamedIndexPrefix, level)
}

// DisplayName renders a JSON name value, empty for null
func DisplayName(name any) string {
	switch v := name.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
