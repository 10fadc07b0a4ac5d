package dataframe

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/format"
	"github.com/paveg/quiver/internal/monitoring"
)

// Operation names used in errors, logs and metrics
const (
	opNew                = "New"
	opCell               = "Cell"
	opIndexValue         = "IndexValue"
	opDataValue          = "DataValue"
	opCategoricalOptions = "CategoricalOptions"
	opAddRows            = "AddRows"
)

// Option configures construction
type Option func(*options)

type options struct {
	cfg       config.Config
	logger    *slog.Logger
	metrics   *monitoring.MetricsCollector
	mem       memory.Allocator
	formatter *format.Formatter
}

// WithConfig overrides the global configuration
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets the logger used for debug records
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records construction and append metrics on the given collector
func WithMetrics(collector *monitoring.MetricsCollector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

// WithAllocator sets the allocator used to decode payloads
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		cfg:    config.GetGlobalConfig(),
		logger: slog.Default(),
		mem:    memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cfg = o.cfg.WithDefaults()
	o.formatter = format.New(o.cfg)
	return o
}

// record runs fn under the explicit collector, or the global one when
// metrics collection is configured
func (o *options) record(op string, fn func() (int64, error)) error {
	if o.metrics != nil {
		return o.metrics.RecordOperation(op, fn)
	}
	if o.cfg.MetricsCollection {
		return monitoring.RecordGlobalOperation(op, fn)
	}
	_, err := fn()
	return err
}

func (o *options) debug(msg string, args ...any) {
	if o.cfg.VerboseLogging {
		o.logger.Debug(msg, args...)
	}
}
