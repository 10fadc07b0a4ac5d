// Package quiver adapts pandas DataFrames serialized as Arrow IPC into a
// row/column addressable grid for UI rendering.
// This package is the sole public API for the library.
//
// A Quiver is built once per payload and never changes afterwards:
//
//	q, err := quiver.New(payload, nil)
//	if err != nil {
//		return err
//	}
//	defer q.Release()
//
//	d := q.Dimensions()
//	for row := 0; row < d.Rows; row++ {
//		for col := 0; col < d.Columns; col++ {
//			cell, _ := q.Cell(row, col)
//			fmt.Print(cell.DisplayString(), "\t")
//		}
//	}
//
// Incremental data is appended with AddRows, which returns a new Quiver.
package quiver

import (
	"io"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/dataframe"
	qio "github.com/paveg/quiver/internal/io"
	"github.com/paveg/quiver/internal/monitoring"
	"github.com/paveg/quiver/internal/series"
)

// Quiver is the public type for the table adapter.
// It wraps the internal dataframe.Quiver to hide implementation details.
type Quiver struct {
	q *dataframe.Quiver
}

// Public views of the adapter's value types
type (
	Cell          = dataframe.Cell
	CellType      = dataframe.CellType
	Type          = dataframe.Type
	Types         = dataframe.Types
	Meta          = dataframe.Meta
	Dimensions    = dataframe.Dimensions
	FieldKey      = dataframe.FieldKey
	FieldKind     = dataframe.FieldKind
	StylerPayload = dataframe.StylerPayload
	Option        = dataframe.Option
	Series        = series.Series
	Config        = config.Config

	MetricsCollector = monitoring.MetricsCollector
	MetricsSummary   = monitoring.MetricsSummary
)

// Cell types
const (
	CellBlank   = dataframe.CellBlank
	CellIndex   = dataframe.CellIndex
	CellColumns = dataframe.CellColumns
	CellData    = dataframe.CellData
)

// Field kinds
const (
	IndexField = dataframe.IndexField
	DataField  = dataframe.DataField
)

// Styler is the display override attached to a styled table
type Styler struct {
	UUID          string
	Caption       *string
	Styles        *string
	DisplayValues *Quiver
}

// New decodes an Arrow IPC payload. styler may be nil.
func New(data []byte, styler *StylerPayload, opts ...Option) (*Quiver, error) {
	q, err := dataframe.New(data, styler, opts...)
	if err != nil {
		return nil, err
	}
	return &Quiver{q: q}, nil
}

// FromTable builds a Quiver from a decoded table carrying pandas metadata.
// The caller keeps ownership of table.
func FromTable(table arrow.Table, styler *StylerPayload, opts ...Option) (*Quiver, error) {
	q, err := dataframe.FromTable(table, styler, opts...)
	if err != nil {
		return nil, err
	}
	return &Quiver{q: q}, nil
}

// FromParquet reads a Parquet file written by pandas
func FromParquet(r io.Reader, opts ...Option) (*Quiver, error) {
	table, err := qio.NewParquetReader(r, qio.DefaultParquetOptions(), nil).Read()
	if err != nil {
		return nil, err
	}
	defer table.Release()
	return FromTable(table, nil, opts...)
}

// WithConfig overrides the global configuration for one construction
func WithConfig(cfg Config) Option {
	return dataframe.WithConfig(cfg)
}

// WithLogger sets the logger for debug records
func WithLogger(logger *slog.Logger) Option {
	return dataframe.WithLogger(logger)
}

// WithMetrics records operation metrics on collector
func WithMetrics(collector *MetricsCollector) Option {
	return dataframe.WithMetrics(collector)
}

// WithAllocator sets the allocator payloads are decoded with
func WithAllocator(mem memory.Allocator) Option {
	return dataframe.WithAllocator(mem)
}

// NewMetricsCollector creates a collector for WithMetrics
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return monitoring.NewMetricsCollector(enabled)
}

// GlobalMetrics summarizes the operations recorded for constructions whose
// configuration enables MetricsCollection
func GlobalMetrics() MetricsSummary {
	return monitoring.GlobalSummary()
}

// ClearGlobalMetrics drops the operations recorded by MetricsCollection
func ClearGlobalMetrics() {
	monitoring.ClearGlobalMetrics()
}

// NewConfig returns the default configuration
func NewConfig() Config {
	return config.NewConfig()
}

// LoadConfig reads a JSON or YAML configuration file
func LoadConfig(path string) (Config, error) {
	return config.LoadFromFile(path)
}

// TypeName returns the name used to compare and report a type
func TypeName(t Type) string {
	return dataframe.TypeName(t)
}

// Dimensions returns the grid size
func (q *Quiver) Dimensions() Dimensions {
	return q.q.Dimensions()
}

// Cell resolves a grid coordinate
func (q *Quiver) Cell(row, col int) (Cell, error) {
	return q.q.Cell(row, col)
}

// CategoricalOptions lists the categories of a categorical data column
func (q *Quiver) CategoricalOptions(col int) ([]any, bool, error) {
	return q.q.CategoricalOptions(col)
}

// IsEmpty reports whether the table is the empty DataFrame
func (q *Quiver) IsEmpty() bool {
	return q.q.IsEmpty()
}

// AddRows returns a new Quiver with the rows of other appended
func (q *Quiver) AddRows(other *Quiver) (*Quiver, error) {
	result, err := q.q.AddRows(other.q)
	if err != nil {
		return nil, err
	}
	return &Quiver{q: result}, nil
}

// IndexValue returns the value of an index level at a data row
func (q *Quiver) IndexValue(row, col int) (any, error) {
	return q.q.IndexValue(row, col)
}

// DataValue returns the value at a data coordinate
func (q *Quiver) DataValue(row, col int) (any, error) {
	return q.q.DataValue(row, col)
}

// Index returns the index levels
func (q *Quiver) Index() []Series {
	return q.q.Index()
}

// IndexNames returns the index level names
func (q *Quiver) IndexNames() []string {
	return q.q.IndexNames()
}

// Columns returns the column header levels
func (q *Quiver) Columns() [][]string {
	return q.q.Columns()
}

// Data returns the data table without adding a reference
func (q *Quiver) Data() arrow.Table {
	return q.q.Data()
}

// Types returns the index and data types
func (q *Quiver) Types() Types {
	return q.q.Types()
}

// Fields returns the arrow fields by key
func (q *Quiver) Fields() map[FieldKey]arrow.Field {
	return q.q.Fields()
}

// Styler returns the styler, if any
func (q *Quiver) Styler() (Styler, bool) {
	s, ok := q.q.Styler()
	if !ok {
		return Styler{}, false
	}
	return Styler{
		UUID:          s.UUID,
		Caption:       s.Caption,
		Styles:        s.Styles,
		DisplayValues: &Quiver{q: s.DisplayValues},
	}, true
}

// CSSID returns the table element id
func (q *Quiver) CSSID() string {
	return q.q.CSSID()
}

// CSSStyles returns the styler CSS
func (q *Quiver) CSSStyles() string {
	return q.q.CSSStyles()
}

// Caption returns the styler caption
func (q *Quiver) Caption() string {
	return q.q.Caption()
}

// Fingerprint identifies the payload the Quiver was built from
func (q *Quiver) Fingerprint() uint64 {
	return q.q.Fingerprint()
}

// String returns a short description
func (q *Quiver) String() string {
	return q.q.String()
}

// Release releases the arrow memory held by the Quiver
func (q *Quiver) Release() {
	if q != nil && q.q != nil {
		q.q.Release()
	}
}
