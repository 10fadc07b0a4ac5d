package dataframe

import (
	"encoding/binary"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/cespare/xxhash/v2"

	dferrors "github.com/paveg/quiver/internal/errors"
	qio "github.com/paveg/quiver/internal/io"
	"github.com/paveg/quiver/internal/schema"
	"github.com/paveg/quiver/internal/series"
)

// StylerPayload is the serialized form of a Styler
type StylerPayload struct {
	UUID          string
	Caption       *string
	Styles        *string
	DisplayValues []byte
}

// New decodes an Arrow IPC payload into a Quiver
func New(data []byte, styler *StylerPayload, opts ...Option) (*Quiver, error) {
	o := newOptions(opts)

	var q *Quiver
	err := o.record(opNew, func() (int64, error) {
		var err error
		q, err = decode(data, styler, o)
		if err != nil {
			return 0, err
		}
		return int64(q.Dimensions().DataRows), nil
	})
	if err != nil {
		return nil, err
	}

	o.debug("quiver constructed", "op", opNew, "fingerprint", q.fingerprint, "dimensions", q.Dimensions())
	return q, nil
}

// FromTable builds a Quiver from an already decoded table carrying the
// pandas metadata. The caller keeps its reference to table.
func FromTable(table arrow.Table, styler *StylerPayload, opts ...Option) (*Quiver, error) {
	o := newOptions(opts)

	var q *Quiver
	err := o.record(opNew, func() (int64, error) {
		var err error
		q, err = build(table, styler, o, tableFingerprint(table))
		if err != nil {
			return 0, err
		}
		return int64(q.Dimensions().DataRows), nil
	})
	if err != nil {
		return nil, err
	}

	o.debug("quiver constructed from table", "op", opNew, "fingerprint", q.fingerprint, "dimensions", q.Dimensions())
	return q, nil
}

func decode(data []byte, styler *StylerPayload, o *options) (*Quiver, error) {
	table, err := qio.DecodeIPC(data, o.mem)
	if err != nil {
		return nil, dferrors.NewInvalidPayloadError(opNew, err)
	}
	defer table.Release()

	return build(table, styler, o, xxhash.Sum64(data))
}

// build runs every parsing step into locals; nothing is assigned until all
// of them succeed.
func build(table arrow.Table, stylerPayload *StylerPayload, o *options, fingerprint uint64) (q *Quiver, err error) {
	var owned []interface{ Release() }
	defer func() {
		if err != nil {
			for _, r := range owned {
				r.Release()
			}
		}
	}()

	sc, err := readSchema(table, o.cfg.MetadataKey)
	if err != nil {
		return nil, err
	}
	raw := sc.RawColumns()

	index, indexFields, err := parseIndex(table, sc)
	for _, level := range index {
		owned = append(owned, level)
	}
	if err != nil {
		return nil, err
	}

	indexNames := parseIndexNames(sc)

	columns, err := schema.HeaderLevels(raw, sc.ColumnLevels())
	if err != nil {
		return nil, dferrors.NewInvalidPayloadError(opNew, err)
	}

	data, dataCols, err := selectData(table, raw, tableRows(table, index))
	if err != nil {
		return nil, err
	}
	owned = append(owned, data)
	for _, col := range dataCols {
		owned = append(owned, col)
	}

	types, err := parseTypes(sc, raw)
	if err != nil {
		return nil, err
	}

	styler, err := parseStyler(stylerPayload, o)
	if err != nil {
		return nil, err
	}
	if styler != nil {
		owned = append(owned, styler.DisplayValues)
		fingerprint = combineFingerprints(fingerprint, styler.DisplayValues.fingerprint, xxhash.Sum64String(styler.UUID))
	}

	fields := parseFields(table.Schema(), raw, indexFields)

	return &Quiver{
		index:       index,
		indexNames:  indexNames,
		columns:     columns,
		data:        data,
		dataCols:    dataCols,
		types:       types,
		fields:      fields,
		styler:      styler,
		fingerprint: fingerprint,
		opts:        o,
	}, nil
}

func readSchema(table arrow.Table, key string) (*schema.Schema, error) {
	md := table.Schema().Metadata()
	i := md.FindKey(key)
	if i < 0 {
		return nil, dferrors.NewSchemaMissingError(opNew, key)
	}
	sc, err := schema.Parse([]byte(md.Values()[i]))
	if err != nil {
		return nil, dferrors.NewInvalidPayloadError(opNew, err)
	}
	return sc, nil
}

// parseIndex returns the index levels and, per level, the arrow field name
// backing it (empty for a RangeIndex). Levels of the null type are dropped.
func parseIndex(table arrow.Table, sc *schema.Schema) ([]series.Series, []string, error) {
	levels := make([]series.Series, 0, len(sc.IndexColumns))
	fields := make([]string, 0, len(sc.IndexColumns))

	for _, d := range sc.IndexColumns {
		if d.IsRange() {
			r := d.Range
			levels = append(levels, series.NewRange(schema.DisplayName(r.Name), r.Start, r.Stop, r.Step))
			fields = append(fields, "")
			continue
		}

		if _, ok := sc.Column(d.Field); !ok {
			return levels, nil, dferrors.NewIndexNotFoundError(opNew, d.Field)
		}
		i := fieldIndex(table.Schema(), d.Field)
		if i < 0 {
			return levels, nil, dferrors.NewIndexNotFoundError(opNew, d.Field)
		}
		col := table.Column(i)
		if col.DataType().ID() == arrow.NULL {
			continue
		}
		levels = append(levels, series.NewArrow(schema.IndexName(d), col.Data()).WithField(col.Field()))
		fields = append(fields, d.Field)
	}
	return levels, fields, nil
}

func parseIndexNames(sc *schema.Schema) []string {
	names := make([]string, len(sc.IndexColumns))
	for i, d := range sc.IndexColumns {
		names[i] = schema.IndexName(d)
	}
	return names
}

// tableRows is the row count of the payload. A table with no fields at all
// only carries a RangeIndex, which then supplies the count.
func tableRows(table arrow.Table, index []series.Series) int64 {
	if table.NumCols() == 0 && table.NumRows() == 0 && len(index) > 0 {
		return int64(index[0].Len())
	}
	return table.NumRows()
}

// selectData keeps the raw columns in schema order. A table without rows or
// without raw columns gets the zero column representation, which still
// carries the row count.
func selectData(table arrow.Table, raw []string, rows int64) (arrow.Table, []*series.Arrow, error) {
	if rows == 0 || len(raw) == 0 {
		return array.NewTable(arrow.NewSchema(nil, nil), nil, rows), nil, nil
	}

	fields := make([]arrow.Field, 0, len(raw))
	cols := make([]arrow.Column, 0, len(raw))
	for _, name := range raw {
		i := fieldIndex(table.Schema(), name)
		if i < 0 {
			return nil, nil, dferrors.NewInvalidPayloadError(opNew, fmt.Errorf("data field %q is not in the table", name))
		}
		fields = append(fields, table.Schema().Field(i))
		cols = append(cols, *table.Column(i))
	}

	data := array.NewTable(arrow.NewSchema(fields, nil), cols, rows)
	return data, dataSeries(data), nil
}

func dataSeries(data arrow.Table) []*series.Arrow {
	out := make([]*series.Arrow, data.NumCols())
	for i := range out {
		col := data.Column(i)
		out[i] = series.NewArrow(col.Name(), col.Data()).WithField(col.Field())
	}
	return out
}

func parseTypes(sc *schema.Schema, raw []string) (Types, error) {
	types := Types{
		Index: make([]Type, 0, len(sc.IndexColumns)),
		Data:  make([]Type, 0, len(raw)),
	}

	for _, d := range sc.IndexColumns {
		if d.IsRange() {
			types.Index = append(types.Index, rangeType(d.Range))
			continue
		}
		col, ok := sc.Column(d.Field)
		if !ok {
			return Types{}, dferrors.NewIndexNotFoundError(opNew, d.Field)
		}
		types.Index = append(types.Index, typeOf(col))
	}

	for _, field := range raw {
		col, _ := sc.Column(field)
		types.Data = append(types.Data, typeOf(col))
	}
	return types, nil
}

func parseStyler(payload *StylerPayload, o *options) (*Styler, error) {
	if payload == nil {
		return nil, nil
	}
	displayValues, err := decode(payload.DisplayValues, nil, o)
	if err != nil {
		return nil, fmt.Errorf("decoding styler display values: %w", err)
	}
	return &Styler{
		UUID:          payload.UUID,
		Caption:       payload.Caption,
		Styles:        payload.Styles,
		DisplayValues: displayValues,
	}, nil
}

// parseFields keys data fields by column position and materialized index
// fields by level position
func parseFields(s *arrow.Schema, raw, indexFields []string) map[FieldKey]arrow.Field {
	fields := make(map[FieldKey]arrow.Field, len(raw)+len(indexFields))
	for k, name := range raw {
		if i := fieldIndex(s, name); i >= 0 {
			fields[FieldKey{Kind: DataField, Position: k}] = s.Field(i)
		}
	}
	for k, name := range indexFields {
		if name == "" {
			continue
		}
		if i := fieldIndex(s, name); i >= 0 {
			fields[FieldKey{Kind: IndexField, Position: k}] = s.Field(i)
		}
	}
	return fields
}

func fieldIndex(s *arrow.Schema, name string) int {
	indices := s.FieldIndices(name)
	if len(indices) == 0 {
		return -1
	}
	return indices[0]
}

func tableFingerprint(table arrow.Table) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(table.Schema().String())
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(table.NumRows())) //nolint:gosec // row counts are non-negative
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

func combineFingerprints(fingerprints ...uint64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, fp := range fingerprints {
		binary.LittleEndian.PutUint64(buf[:], fp)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
