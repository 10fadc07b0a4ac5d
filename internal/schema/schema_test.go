package schema_test

import (
	"testing"

	"github.com/paveg/quiver/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rangeSidecar = `{
	"index_columns": [{"kind": "range", "name": null, "start": 0, "stop": 3, "step": 1}],
	"column_indexes": [{"name": null, "field_name": null, "pandas_type": "unicode", "numpy_type": "object", "metadata": {"encoding": "UTF-8"}}],
	"columns": [
		{"name": "a", "field_name": "a", "pandas_type": "int64", "numpy_type": "int64", "metadata": null},
		{"name": "cat", "field_name": "cat", "pandas_type": "categorical", "numpy_type": "int8", "metadata": {"num_categories": 3, "ordered": true}}
	],
	"pandas_version": "1.5.3"
}`

const namedIndexSidecar = `{
	"index_columns": ["__index_level_0__", "city"],
	"column_indexes": [{}, {}],
	"columns": [
		{"name": "('x', 'y')", "field_name": "('x', 'y')", "pandas_type": "float64", "numpy_type": "float64", "metadata": null},
		{"name": null, "field_name": "__index_level_0__", "pandas_type": "unicode", "numpy_type": "object", "metadata": null},
		{"name": "city", "field_name": "city", "pandas_type": "datetimetz", "numpy_type": "datetime64[ns]", "metadata": {"timezone": "UTC"}}
	]
}`

func TestParse_RangeIndex(t *testing.T) {
	s, err := schema.Parse([]byte(rangeSidecar))
	require.NoError(t, err)

	require.Len(t, s.IndexColumns, 1)
	require.True(t, s.IndexColumns[0].IsRange())
	r := s.IndexColumns[0].Range
	assert.Equal(t, int64(0), r.Start)
	assert.Equal(t, int64(3), r.Stop)
	assert.Equal(t, int64(1), r.Step)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, "", schema.IndexName(s.IndexColumns[0]))

	assert.Equal(t, 1, s.ColumnLevels())
	assert.Equal(t, []string{"a", "cat"}, s.RawColumns())
	assert.Equal(t, "1.5.3", s.PandasVersion)

	cat, ok := s.Columns[1].Categorical()
	require.True(t, ok)
	assert.Equal(t, 3, cat.NumCategories)
	assert.True(t, cat.Ordered)

	_, ok = s.Columns[0].Categorical()
	assert.False(t, ok)
	assert.Nil(t, s.Columns[0].Extra())
}

func TestParse_FieldIndex(t *testing.T) {
	s, err := schema.Parse([]byte(namedIndexSidecar))
	require.NoError(t, err)

	require.Len(t, s.IndexColumns, 2)
	assert.False(t, s.IndexColumns[0].IsRange())
	assert.Equal(t, "", schema.IndexName(s.IndexColumns[0]))
	assert.Equal(t, "city", schema.IndexName(s.IndexColumns[1]))

	assert.True(t, s.IsIndexField("city"))
	assert.False(t, s.IsIndexField("('x', 'y')"))
	assert.Equal(t, []string{"('x', 'y')"}, s.RawColumns())
	assert.Equal(t, 2, s.ColumnLevels())

	col, ok := s.Column("city")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"timezone": "UTC"}, col.Extra())

	_, ok = s.Column("missing")
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"index_columns": [`},
		{"unknown descriptor kind", `{"index_columns": [{"kind": "interval"}], "columns": []}`},
		{"zero step", `{"index_columns": [{"kind": "range", "start": 0, "stop": 1, "step": 0}], "columns": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.json))
			require.Error(t, err)
		})
	}
}

func TestSchema_MarshalRoundTrip(t *testing.T) {
	field := "v"
	name := "idx"
	s := &schema.Schema{
		IndexColumns: []schema.IndexDescriptor{
			{Range: &schema.RangeIndex{Name: name, Start: 10, Stop: 20, Step: 5}},
		},
		ColumnIndexes: []schema.ColumnDescriptor{{PandasType: "unicode", NumpyType: "object"}},
		Columns: []schema.ColumnDescriptor{
			{Name: "v", FieldName: &field, PandasType: "bool", NumpyType: "bool"},
		},
	}

	data, err := s.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"range"`)

	decoded, err := schema.Parse(data)
	require.NoError(t, err)
	require.True(t, decoded.IndexColumns[0].IsRange())
	assert.Equal(t, "idx", schema.IndexName(decoded.IndexColumns[0]))
	assert.Equal(t, 2, decoded.IndexColumns[0].Range.Len())
	assert.Equal(t, []string{"v"}, decoded.RawColumns())
}

func TestRangeIndex_Len(t *testing.T) {
	tests := []struct {
		name     string
		r        schema.RangeIndex
		expected int
	}{
		{"empty", schema.RangeIndex{Start: 0, Stop: 0, Step: 1}, 0},
		{"unit step", schema.RangeIndex{Start: 0, Stop: 4, Step: 1}, 4},
		{"stride", schema.RangeIndex{Start: 0, Stop: 5, Step: 2}, 3},
		{"negative step", schema.RangeIndex{Start: 5, Stop: 0, Step: -1}, 5},
		{"wrong direction", schema.RangeIndex{Start: 5, Stop: 0, Step: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.r.Len())
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "", schema.DisplayName(nil))
	assert.Equal(t, "name", schema.DisplayName("name"))
	assert.Equal(t, "3", schema.DisplayName(float64(3)))
	assert.Equal(t, "1.5", schema.DisplayName(1.5))
	assert.Equal(t, "true", schema.DisplayName(true))
}

func TestUnnamedIndexField(t *testing.T) {
	assert.Equal(t, "__index_level_0__", schema.UnnamedIndexField(0))
	assert.Equal(t, "__index_level_12__", schema.UnnamedIndexField(12))
}
