package version

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brcolow/codeartifact-maven-extension/cmd/setup/hooks"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/enum"
)

const (
	FlagFormat                = "format"
	FlagFormatShortHand       = "f"
	FlagFormatJSON            = "json"
	FlagFormatGoBuildInfo     = "gobuildinfo"
	FlagFormatGoBuildInfoJSON = "gobuildinfojson"
)

// BuildVersion overrides the module version detected from the build info when set with
//
//	-ldflags "-X github.com/brcolow/codeartifact-maven-extension/cmd/version.BuildVersion=1.2.3"
var BuildVersion = "n/a"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version of the codeartifact CLI",
		Long: fmt.Sprintf(`Print the build version of the codeartifact CLI.

With %[1]q the version is split into its semantic version parts. A pre-release of the form
"<date>-<commit>", as produced for go pseudo versions, is reported as build date and commit.
With %[2]q the go build information is printed as is, %[3]q prints it as JSON.

The version does not need any repository configuration, a broken project file does not affect it.`,
			FlagFormatJSON, FlagFormatGoBuildInfo, FlagFormatGoBuildInfoJSON),
		Example:           fmt.Sprintf(`  codeartifact version --%s %s`, FlagFormat, FlagFormatGoBuildInfo),
		Args:              cobra.NoArgs,
		PersistentPreRunE: hooks.LoggingPreRunE,
		RunE:              Version,
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), FlagFormat, FlagFormatShortHand, []string{
		FlagFormatJSON, FlagFormatGoBuildInfo, FlagFormatGoBuildInfoJSON,
	}, "format of the version information")
	return cmd
}

func Version(cmd *cobra.Command, _ []string) error {
	format, err := enum.Get(cmd.Flags(), FlagFormat)
	if err != nil {
		return fmt.Errorf("getting format flag failed: %w", err)
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Errorf("no build info available")
	}
	if BuildVersion != "n/a" {
		bi.Main.Version = BuildVersion
	}

	out := cmd.OutOrStdout()
	switch format {
	case FlagFormatJSON:
		return json.NewEncoder(out).Encode(GetVersionInfo(bi))
	case FlagFormatGoBuildInfo:
		_, err = io.Copy(out, strings.NewReader(bi.String()))
		return err
	case FlagFormatGoBuildInfoJSON:
		return json.NewEncoder(out).Encode(bi)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
