package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/quiver/internal/format"
	"github.com/paveg/quiver/internal/series"
	"github.com/paveg/quiver/internal/validation"
)

// CellType classifies a grid coordinate
type CellType string

const (
	CellBlank   CellType = "blank"
	CellIndex   CellType = "index"
	CellColumns CellType = "columns"
	CellData    CellType = "data"
)

// Cell is the resolved view of one grid coordinate. Cells are built on
// demand and never stored.
type Cell struct {
	Type           CellType
	CSSID          string // set for index and data cells of styled tables
	CSSClass       string
	Content        any
	ContentType    *Type
	Field          *arrow.Field
	DisplayContent *string // styler override for data cells

	formatter *format.Formatter
}

// String renders the content
func (c Cell) String() string {
	f := c.formatter
	if f == nil {
		f = format.Default()
	}
	return f.Format(c.Content)
}

// DisplayString renders the styler override when there is one, the content otherwise
func (c Cell) DisplayString() string {
	if c.DisplayContent != nil {
		return *c.DisplayContent
	}
	return c.String()
}

// Cell resolves the grid coordinate (row, col)
func (q *Quiver) Cell(row, col int) (Cell, error) {
	d := q.Dimensions()
	if err := validation.ValidateCoordinate(row, col, d.Rows, d.Columns, opCell); err != nil {
		return Cell{}, err
	}

	headerRow := row < d.HeaderRows
	headerCol := col < d.HeaderColumns
	dataRow := row - d.HeaderRows
	dataCol := col - d.HeaderColumns

	switch {
	case headerRow && headerCol:
		return q.blankCell(row, col), nil
	case headerCol:
		return q.indexCell(dataRow, col), nil
	case headerRow:
		return q.columnsCell(row, dataCol), nil
	default:
		return q.dataCell(dataRow, dataCol)
	}
}

func (q *Quiver) blankCell(row, col int) Cell {
	cssClass := "blank"
	if col > 0 {
		cssClass = fmt.Sprintf("blank level%d", row)
	}
	return Cell{
		Type:      CellBlank,
		CSSClass:  cssClass,
		Content:   "",
		formatter: q.opts.formatter,
	}
}

func (q *Quiver) indexCell(dataRow, level int) Cell {
	c := Cell{
		Type:      CellIndex,
		CSSClass:  fmt.Sprintf("row_heading level%d row%d", level, dataRow),
		Content:   q.indexValue(dataRow, level),
		formatter: q.opts.formatter,
	}
	if level < len(q.types.Index) {
		t := q.types.Index[level]
		c.ContentType = &t
	}
	if f, ok := q.fields[FieldKey{Kind: IndexField, Position: level}]; ok {
		c.Field = &f
	}
	if q.styler != nil {
		c.CSSID = fmt.Sprintf("T_%slevel%d_row%d", q.styler.UUID, level, dataRow)
	}
	return c
}

func (q *Quiver) columnsCell(level, dataCol int) Cell {
	t := headerType
	return Cell{
		Type:        CellColumns,
		CSSClass:    fmt.Sprintf("col_heading level%d col%d", level, dataCol),
		Content:     q.columns[level][dataCol],
		ContentType: &t,
		formatter:   q.opts.formatter,
	}
}

func (q *Quiver) dataCell(dataRow, dataCol int) (Cell, error) {
	c := Cell{
		Type:      CellData,
		CSSClass:  fmt.Sprintf("data row%d col%d", dataRow, dataCol),
		Content:   q.dataValue(dataRow, dataCol),
		formatter: q.opts.formatter,
	}
	if dataCol < len(q.types.Data) {
		t := q.types.Data[dataCol]
		c.ContentType = &t
	}
	if f, ok := q.fields[FieldKey{Kind: DataField, Position: dataCol}]; ok {
		c.Field = &f
	}

	if q.styler != nil {
		c.CSSID = fmt.Sprintf("T_%srow%d_col%d", q.styler.UUID, dataRow, dataCol)

		d := q.Dimensions()
		display, err := q.styler.DisplayValues.Cell(d.HeaderRows+dataRow, d.HeaderColumns+dataCol)
		if err != nil {
			return Cell{}, fmt.Errorf("resolving display value: %w", err)
		}
		s, ok := display.Content.(string)
		if !ok {
			s = display.String()
		}
		c.DisplayContent = &s
	}
	return c, nil
}

// IndexValue returns the value of index level col at data row row
func (q *Quiver) IndexValue(row, col int) (any, error) {
	d := q.Dimensions()
	if err := validation.ValidateCoordinate(row, col, d.DataRows, len(q.index), opIndexValue); err != nil {
		return nil, err
	}
	return q.indexValue(row, col), nil
}

// DataValue returns the value at data row row, data column col
func (q *Quiver) DataValue(row, col int) (any, error) {
	d := q.Dimensions()
	if err := validation.ValidateCoordinate(row, col, d.DataRows, d.DataColumns, opDataValue); err != nil {
		return nil, err
	}
	return q.dataValue(row, col), nil
}

func (q *Quiver) indexValue(row, level int) any {
	if level >= len(q.index) {
		return nil
	}
	return q.index[level].Value(row)
}

func (q *Quiver) dataValue(row, col int) any {
	if col >= len(q.dataCols) {
		return nil
	}
	return q.dataCols[col].Value(row)
}

// CategoricalOptions returns every category of a dictionary encoded data
// column in dictionary order, whether or not a row uses it. ok is false for
// other columns.
func (q *Quiver) CategoricalOptions(col int) (categories []any, ok bool, err error) {
	d := q.Dimensions()
	if verr := validation.ValidateIndex(col, d.DataColumns, opCategoricalOptions, validation.AxisColumn); verr != nil {
		return nil, false, verr
	}
	if col >= len(q.dataCols) {
		return nil, false, nil
	}
	if q.dataCols[col].DataType().ID() != arrow.DICTIONARY {
		return nil, false, nil
	}
	categories, ok = series.DictionaryValues(q.dataCols[col].Chunked())
	return categories, ok, nil
}
