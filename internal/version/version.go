// Package version reports how the objstore binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Stamped with -ldflags "-X github.com/flowmesh/objectstore/internal/version.Version=...".
// Empty values are filled from the module build info at runtime.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info describes one build
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Modified  bool
}

// Get returns the build description of the running binary
func Get() Info {
	return fromBuildInfo(debug.ReadBuildInfo())
}

func fromBuildInfo(bi *debug.BuildInfo, ok bool) Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if !ok || bi == nil {
		return info
	}

	if bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit returns the first 12 characters of the commit hash
func (i Info) ShortCommit() string {
	switch {
	case i.Commit == "":
		return "unknown"
	case len(i.Commit) > 12:
		return i.Commit[:12]
	default:
		return i.Commit
	}
}

func (i Info) String() string {
	commit := i.ShortCommit()
	if i.Modified {
		commit += "-dirty"
	}
	built := i.BuildTime
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("objstore %s (commit %s, built %s, %s)", i.Version, commit, built, i.GoVersion)
}

// String returns the version line printed by "objstore version"
func String() string {
	return Get().String()
}
