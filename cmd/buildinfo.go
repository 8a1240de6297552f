package cmd

import (
	"runtime/debug"
)

type (
	BuildInfo struct {
		ModVersion string
		GoVersion  string
		VCSRev     string
	}
)

// ReadVCSBuildInfo reads the module version and vcs revision of the binary
func ReadVCSBuildInfo() BuildInfo {
	info := BuildInfo{
		ModVersion: "dev",
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.ModVersion = bi.Main.Version
	}
	for _, i := range bi.Settings {
		if i.Key == "vcs.revision" {
			info.VCSRev = i.Value
		}
	}
	return info
}
