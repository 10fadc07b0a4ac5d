package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/paveg/quiver/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	config := config.NewConfig()

	assert.Equal(t, "pandas", config.MetadataKey)
	assert.Equal(t, 0, config.FloatPrecision) // 0 means shortest representation
	assert.Equal(t, "2006-01-02 15:04:05.999999999", config.TimestampLayout)
	assert.Equal(t, "2006-01-02", config.DateLayout)
	assert.Equal(t, 20, config.MaxDisplayRows)
	assert.False(t, config.VerboseLogging)
	assert.False(t, config.MetricsCollection)
}

func TestConfig_Validation(t *testing.T) {
	valid := config.NewConfig()

	tests := []struct {
		name          string
		mutate        func(c *config.Config)
		expectedError string
	}{
		{
			name:          "valid config",
			mutate:        func(_ *config.Config) {},
			expectedError: "",
		},
		{
			name:          "empty metadata key",
			mutate:        func(c *config.Config) { c.MetadataKey = "  " },
			expectedError: "MetadataKey must not be empty",
		},
		{
			name:          "negative float precision",
			mutate:        func(c *config.Config) { c.FloatPrecision = -1 },
			expectedError: "FloatPrecision must be between 0 and 17, got -1",
		},
		{
			name:          "excessive float precision",
			mutate:        func(c *config.Config) { c.FloatPrecision = 30 },
			expectedError: "FloatPrecision must be between 0 and 17, got 30",
		},
		{
			name:          "empty timestamp layout",
			mutate:        func(c *config.Config) { c.TimestampLayout = "" },
			expectedError: "TimestampLayout must not be empty",
		},
		{
			name:          "negative display rows",
			mutate:        func(c *config.Config) { c.MaxDisplayRows = -5 },
			expectedError: "MaxDisplayRows must be non-negative, got -5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedError)
			}
		})
	}
}

func TestConfig_LoadFromJSON(t *testing.T) {
	jsonData := `{
		"metadata_key": "frame",
		"float_precision": 3,
		"verbose_logging": true
	}`

	config, err := config.LoadFromJSON([]byte(jsonData))
	require.NoError(t, err)

	assert.Equal(t, "frame", config.MetadataKey)
	assert.Equal(t, 3, config.FloatPrecision)
	assert.True(t, config.VerboseLogging)
	assert.Equal(t, "2006-01-02", config.DateLayout) // filled by defaults
}

func TestConfig_LoadFromJSON_Invalid(t *testing.T) {
	_, err := config.LoadFromJSON([]byte(`{"float_precision": "three"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON configuration")
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "quiver.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"max_display_rows": 5, "metrics_collection": true}`), 0o600))

		config, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 5, config.MaxDisplayRows)
		assert.True(t, config.MetricsCollection)
		assert.Equal(t, "pandas", config.MetadataKey)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "quiver.yaml")
		yamlData := "metadata_key: arrow_pandas\nfloat_precision: 2\ntimestamp_layout: \"2006-01-02T15:04:05Z07:00\"\n"
		require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

		config, err := config.LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "arrow_pandas", config.MetadataKey)
		assert.Equal(t, 2, config.FloatPrecision)
		assert.Equal(t, "2006-01-02T15:04:05Z07:00", config.TimestampLayout)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "quiver.toml")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

		_, err := config.LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config file format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFromFile(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("QUIVER_METADATA_KEY", "meta")
	t.Setenv("QUIVER_FLOAT_PRECISION", "4")
	t.Setenv("QUIVER_MAX_DISPLAY_ROWS", "not-a-number")
	t.Setenv("QUIVER_VERBOSE_LOGGING", "true")

	config := config.LoadFromEnv()

	assert.Equal(t, "meta", config.MetadataKey)
	assert.Equal(t, 4, config.FloatPrecision)
	assert.Equal(t, 20, config.MaxDisplayRows) // invalid value ignored
	assert.True(t, config.VerboseLogging)
	assert.False(t, config.MetricsCollection)
}

func TestConfig_WithDefaults(t *testing.T) {
	config := config.Config{
		FloatPrecision: 6,
	}

	withDefaults := config.WithDefaults()

	assert.Equal(t, 6, withDefaults.FloatPrecision)
	assert.Equal(t, "pandas", withDefaults.MetadataKey)
	assert.Equal(t, 20, withDefaults.MaxDisplayRows)
	assert.False(t, withDefaults.VerboseLogging)
	require.NoError(t, withDefaults.Validate())
}

func TestGlobalConfig_SetAndGet(t *testing.T) {
	originalConfig := config.GetGlobalConfig()
	defer config.SetGlobalConfig(originalConfig)

	newConfig := config.NewConfig()
	newConfig.MetadataKey = "custom"
	newConfig.MetricsCollection = true

	config.SetGlobalConfig(newConfig)
	retrieved := config.GetGlobalConfig()

	assert.Equal(t, "custom", retrieved.MetadataKey)
	assert.True(t, retrieved.MetricsCollection)
}

func TestConfig_ToJSON(t *testing.T) {
	cfg := config.NewConfig()
	cfg.FloatPrecision = 2

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}
