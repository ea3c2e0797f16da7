package version

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{"release", BuildInfo{Version: "v1.0.0", GitCommit: "abcdef123456"}, "v1.0.0 (abcdef1)"},
		{"dev", BuildInfo{Version: "dev", GitCommit: "abcdef123456"}, "dev-abcdef1"},
		{"no commit", BuildInfo{Version: "v1.0.0", GitCommit: "unknown"}, "v1.0.0"},
		{"short commit", BuildInfo{Version: "dev", GitCommit: "abc"}, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.Short())
		})
	}
}

func TestString(t *testing.T) {
	info := BuildInfo{
		Version:   "v2.0.0",
		GitCommit: "abcdef123456",
		BuildTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
		Modified:  true,
	}
	s := info.String()
	assert.Contains(t, s, "Version: v2.0.0")
	assert.Contains(t, s, "Commit: abcdef123456 (modified)")
	assert.Contains(t, s, "Built: 2026-01-02T03:04:05Z")
	assert.Contains(t, s, "Platform: linux/amd64")
}

func TestGetUsesLdflags(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version, GitCommit, BuildTime = "v3.1.4", "1234567890", "2026-10-14T00:00:00Z"
	info := Get()
	assert.Equal(t, "v3.1.4", info.Version)
	assert.Equal(t, "1234567890", info.GitCommit)
	assert.Equal(t, 2026, info.BuildTime.Year())
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.True(t, info.IsRelease())
	assert.False(t, BuildInfo{Version: "dev-abc"}.IsRelease())
}
