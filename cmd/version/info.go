package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

type Info struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	Patch      string `json:"patch"`
	PreRelease string `json:"prerelease,omitempty"`
	Meta       string `json:"meta,omitempty"`
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	BuildDate  string `json:"buildDate,omitempty"`
	GoVersion  string `json:"goVersion"`
	Compiler   string `json:"compiler"`
	Platform   string `json:"platform"`
}

// GetVersionInfo splits the main module version of bi. Versions that are not semantic versions,
// such as "(devel)", are kept as they are with all parts set to "0".
func GetVersionInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Version:   bi.Main.Version,
		Major:     "0",
		Minor:     "0",
		Patch:     "0",
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	v, err := semver.NewVersion(bi.Main.Version)
	if err != nil {
		return info
	}
	info.Version = v.String()
	info.Meta = strings.TrimPrefix(v.Metadata(), "+")
	if pre := v.Prerelease(); pre != "" {
		info.PreRelease = pre
		if date, commit, ok := strings.Cut(pre, "-"); ok {
			info.BuildDate, info.Commit = date, commit
		}
	}
	info.Major = strconv.FormatUint(v.Major(), 10)
	info.Minor = strconv.FormatUint(v.Minor(), 10)
	info.Patch = strconv.FormatUint(v.Patch(), 10)
	return info
}
