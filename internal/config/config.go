// Package config provides configuration management for quiver table adapters
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for table adapters
type Config struct {
	// Payload Configuration
	MetadataKey string `json:"metadata_key" yaml:"metadata_key"` // Schema metadata key carrying the pandas sidecar

	// Display Configuration
	FloatPrecision  int    `json:"float_precision" yaml:"float_precision"`   // Fixed decimals for floats (0 = shortest representation)
	TimestampLayout string `json:"timestamp_layout" yaml:"timestamp_layout"` // Go time layout for timestamps
	DateLayout      string `json:"date_layout" yaml:"date_layout"`           // Go time layout for dates
	MaxDisplayRows  int    `json:"max_display_rows" yaml:"max_display_rows"` // Rows rendered by the CLI

	// Debugging Configuration
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging"`       // Enable debug logging
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection"` // Enable metrics collection
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultMetadataKey     = "pandas"
	DefaultTimestampLayout = "2006-01-02 15:04:05.999999999"
	DefaultDateLayout      = "2006-01-02"
	DefaultMaxDisplayRows  = 20
	MaxFloatPrecision      = 17
)

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		MetadataKey: DefaultMetadataKey,

		FloatPrecision:  0, // Shortest round-trip representation
		TimestampLayout: DefaultTimestampLayout,
		DateLayout:      DefaultDateLayout,
		MaxDisplayRows:  DefaultMaxDisplayRows,

		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MetadataKey) == "" {
		return fmt.Errorf("MetadataKey must not be empty")
	}

	if c.FloatPrecision < 0 || c.FloatPrecision > MaxFloatPrecision {
		return fmt.Errorf("FloatPrecision must be between 0 and %d, got %d", MaxFloatPrecision, c.FloatPrecision)
	}

	if c.TimestampLayout == "" {
		return fmt.Errorf("TimestampLayout must not be empty")
	}

	if c.DateLayout == "" {
		return fmt.Errorf("DateLayout must not be empty")
	}

	if c.MaxDisplayRows < 0 {
		return fmt.Errorf("MaxDisplayRows must be non-negative, got %d", c.MaxDisplayRows)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.MetadataKey == "" {
		c.MetadataKey = defaults.MetadataKey
	}
	if c.TimestampLayout == "" {
		c.TimestampLayout = defaults.TimestampLayout
	}
	if c.DateLayout == "" {
		c.DateLayout = defaults.DateLayout
	}
	if c.MaxDisplayRows == 0 {
		c.MaxDisplayRows = defaults.MaxDisplayRows
	}

	// FloatPrecision zero already means the default representation.
	// Boolean fields keep their explicit values.
	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from QUIVER_* environment variables
func LoadFromEnv() Config {
	config := NewConfig()

	if val := os.Getenv("QUIVER_METADATA_KEY"); val != "" {
		config.MetadataKey = val
	}

	if val := os.Getenv("QUIVER_FLOAT_PRECISION"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.FloatPrecision = parsed
		}
	}

	if val := os.Getenv("QUIVER_TIMESTAMP_LAYOUT"); val != "" {
		config.TimestampLayout = val
	}

	if val := os.Getenv("QUIVER_DATE_LAYOUT"); val != "" {
		config.DateLayout = val
	}

	if val := os.Getenv("QUIVER_MAX_DISPLAY_ROWS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.MaxDisplayRows = parsed
		}
	}

	if val := os.Getenv("QUIVER_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	if val := os.Getenv("QUIVER_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}
