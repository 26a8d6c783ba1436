package version

import (
	"runtime/debug"
	"strings"
)

// Set through -ldflags "-X github.com/fmueller/vidtranslate/internal/version.Version=..."
var (
	Version = ""
	Commit  = "unknown"
	Date    = "unknown"
)

// Resolve returns the injected release version, falling back to the module
// version recorded by `go install` and finally to a dev marker with the VCS
// revision when one was stamped into the binary.
func Resolve() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(Version, info)
}

func resolveVersion(injected string, info *debug.BuildInfo) string {
	if v := strings.TrimPrefix(strings.TrimSpace(injected), "v"); v != "" {
		return v
	}
	if info == nil {
		return "0.0.0-dev"
	}

	if v := strings.TrimPrefix(info.Main.Version, "v"); v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	if revision == "" {
		return "0.0.0-dev"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return "0.0.0-dev+" + revision
}
