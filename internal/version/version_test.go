package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		bi   *debug.BuildInfo
		ok   bool
		want Info
	}{
		{
			name: "no build info",
			ok:   false,
			want: Info{Version: "dev"},
		},
		{
			name: "vcs stamped",
			ok:   true,
			bi: &debug.BuildInfo{
				GoVersion: "go1.24.11",
				Main:      debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.time", Value: "2024-03-10T12:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Info{
				Version:   "dev",
				Commit:    "0123456789abcdef0123",
				BuildTime: "2024-03-10T12:00:00Z",
				GoVersion: "go1.24.11",
				Modified:  true,
			},
		},
		{
			name: "module version",
			ok:   true,
			bi: &debug.BuildInfo{
				GoVersion: "go1.24.11",
				Main:      debug.Module{Version: "v1.2.0"},
			},
			want: Info{Version: "v1.2.0", GoVersion: "go1.24.11"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromBuildInfo(tt.bi, tt.ok)
			if tt.want.GoVersion == "" {
				tt.want.GoVersion = got.GoVersion
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{
		Version:   "v1.2.0",
		Commit:    "0123456789abcdef0123",
		GoVersion: "go1.24.11",
		Modified:  true,
	}
	assert.Equal(t, "objstore v1.2.0 (commit 0123456789ab-dirty, built unknown, go1.24.11)", info.String())

	assert.Equal(t, "unknown", Info{}.ShortCommit())
	assert.Equal(t, "abc", Info{Commit: "abc"}.ShortCommit())
}

func TestString(t *testing.T) {
	assert.Contains(t, String(), "objstore ")
}
