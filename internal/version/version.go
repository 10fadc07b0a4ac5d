// Package version provides build information for the quiver CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
	arrowModule      = "github.com/apache/arrow-go/v18"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains build information
type BuildInfo struct {
	Version      string `json:"version"`
	BuildDate    string `json:"build_date"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Dirty        bool   `json:"dirty"`
	Module       string `json:"module"`
	ArrowVersion string `json:"arrow_version"`
}

// Info returns build information, completed from the binary when available
func Info() BuildInfo {
	info := BuildInfo{
		Version:      Version,
		BuildDate:    BuildDate,
		GitCommit:    GitCommit,
		GoVersion:    GoVersion,
		Dirty:        strings.Contains(GitCommit, "-dirty"),
		ArrowVersion: unknownValue,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.Module = buildInfo.Main.Path
		for _, dep := range buildInfo.Deps {
			if dep.Path == arrowModule {
				info.ArrowVersion = dep.Version
			}
		}
	}

	return info
}

// String returns a formatted version string
func (b BuildInfo) String() string {
	var sb strings.Builder
	sb.WriteString("quiver table adapter\n")
	sb.WriteString(fmt.Sprintf("Version: %s", b.Version))
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue {
		sb.WriteString(fmt.Sprintf("Build Date: %s\n", b.BuildDate))
	}

	if b.GitCommit != unknownValue {
		commit := b.GitCommit
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		sb.WriteString(fmt.Sprintf("Git Commit: %s\n", commit))
	}

	sb.WriteString(fmt.Sprintf("Go Version: %s\n", b.GoVersion))
	if b.ArrowVersion != unknownValue {
		sb.WriteString(fmt.Sprintf("Arrow Version: %s\n", b.ArrowVersion))
	}

	if b.Module != "" {
		sb.WriteString(fmt.Sprintf("Module: %s\n", b.Module))
	}

	return sb.String()
}

// IsRelease returns true if this is a release version (not dev)
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
