package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, GoVersion, info.GoVersion)
	assert.NotEmpty(t, info.ArrowVersion)
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     BuildInfo
		contains []string
		excludes []string
	}{
		{
			name: "dev build",
			info: BuildInfo{
				Version:      "dev",
				BuildDate:    unknownValue,
				GitCommit:    unknownValue,
				GoVersion:    "go1.24.4",
				ArrowVersion: unknownValue,
			},
			contains: []string{"quiver table adapter", "Version: dev", "Go Version: go1.24.4"},
			excludes: []string{"Build Date", "Git Commit", "Arrow Version", "(dirty)"},
		},
		{
			name: "release build",
			info: BuildInfo{
				Version:      "v1.2.0",
				BuildDate:    "2026-01-01T00:00:00Z",
				GitCommit:    "0123456789abcdef-dirty",
				GoVersion:    "go1.24.4",
				Dirty:        true,
				Module:       "github.com/paveg/quiver",
				ArrowVersion: "v18.3.1",
			},
			contains: []string{
				"Version: v1.2.0 (dirty)",
				"Build Date: 2026-01-01T00:00:00Z",
				"Git Commit: 0123456\n",
				"Arrow Version: v18.3.1",
				"Module: github.com/paveg/quiver",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.info.String()
			for _, want := range tt.contains {
				assert.Contains(t, s, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, s, unwanted)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version string
		want    bool
	}{
		{"dev", false},
		{"v1.0.0", true},
		{"v1.0.0-rc.1", false},
	}
	for _, tt := range tests {
		Version = tt.version
		assert.Equal(t, tt.want, IsRelease(), tt.version)
	}
}
