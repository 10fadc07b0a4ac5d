// Package format renders cell content as display strings
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/paveg/quiver/internal/config"
	"github.com/paveg/quiver/internal/series"
	"golang.org/x/exp/constraints"
)

// Formatter renders Go values produced by series.ValueAt
type Formatter struct {
	FloatPrecision  int
	TimestampLayout string
	DateLayout      string
}

// New creates a Formatter from the display settings of cfg
func New(cfg config.Config) *Formatter {
	cfg = cfg.WithDefaults()
	return &Formatter{
		FloatPrecision:  cfg.FloatPrecision,
		TimestampLayout: cfg.TimestampLayout,
		DateLayout:      cfg.DateLayout,
	}
}

// Default returns a Formatter with default settings
func Default() *Formatter {
	return New(config.NewConfig())
}

// Format renders v; nil renders as the empty string
func (f *Formatter) Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return signed(val)
	case int8:
		return signed(val)
	case int16:
		return signed(val)
	case int32:
		return signed(val)
	case int64:
		return signed(val)
	case uint:
		return unsigned(val)
	case uint8:
		return unsigned(val)
	case uint16:
		return unsigned(val)
	case uint32:
		return unsigned(val)
	case uint64:
		return unsigned(val)
	case float32:
		return floating(val, 32, f.FloatPrecision)
	case float64:
		return floating(val, 64, f.FloatPrecision)
	case time.Time:
		return f.formatTime(val)
	case time.Duration:
		return val.String()
	case []byte:
		return string(val)
	case series.Interval:
		return f.formatInterval(val)
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = f.Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Values renders a slice of values
func (f *Formatter) Values(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = f.Format(v)
	}
	return out
}

// formatTime uses the date layout for values without a clock component
func (f *Formatter) formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 && t.Location() == time.UTC {
		return t.Format(f.DateLayout)
	}
	return t.Format(f.TimestampLayout)
}

func (f *Formatter) formatInterval(iv series.Interval) string {
	open, closing := "(", "]"
	switch iv.Closed {
	case "left":
		open, closing = "[", ")"
	case "both":
		open, closing = "[", "]"
	case "neither":
		open, closing = "(", ")"
	}
	return open + f.Format(iv.Left) + ", " + f.Format(iv.Right) + closing
}

func signed[T constraints.Signed](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func unsigned[T constraints.Unsigned](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

func floating[T constraints.Float](v T, bits, precision int) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if precision > 0 {
		return strconv.FormatFloat(f, 'f', precision, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
