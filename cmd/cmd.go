package cmd

import (
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/brcolow/codeartifact-maven-extension/cmd/configuration"
	cacmd "github.com/brcolow/codeartifact-maven-extension/cmd/internal/cmd"
	"github.com/brcolow/codeartifact-maven-extension/cmd/prune"
	"github.com/brcolow/codeartifact-maven-extension/cmd/resolve"
	"github.com/brcolow/codeartifact-maven-extension/cmd/run"
	"github.com/brcolow/codeartifact-maven-extension/cmd/settings"
	"github.com/brcolow/codeartifact-maven-extension/cmd/setup/hooks"
	"github.com/brcolow/codeartifact-maven-extension/cmd/version"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/file"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/log"
)

// Execute runs the root command and exits with a non-zero code on failure.
// A failed build started by "run" passes its exit code through.
func Execute() {
	err := New().Execute()
	if err == nil {
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(1)
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codeartifact [sub-command]",
		Short: "Authenticate Maven builds against AWS CodeArtifact",
		Long: `The codeartifact command line client resolves the maven endpoint of an AWS CodeArtifact
repository together with a short lived authorization token, writes Maven settings for it,
runs builds against it and prunes Unlisted package versions.

The repository is configured with codeartifact.* properties in the project file, a configuration
file and command line flags. Flags take precedence over the project file,
which takes precedence over the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: hooks.PreRunE,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	configuration.RegisterConfigFlag(cmd)

	flags := cmd.PersistentFlags()
	file.Var(flags, cacmd.PomFlag, cacmd.PomDefault, "project file to read codeartifact.* properties from, relative to the working directory")
	flags.String(cacmd.DomainFlag, "", "CodeArtifact domain of the repository")
	flags.String(cacmd.DomainOwnerFlag, "", "AWS account ID owning the domain")
	flags.String(cacmd.RepositoryFlag, "", "name of the CodeArtifact repository")
	flags.String(cacmd.ProfileFlag, "", `AWS profile to load credentials from (default "codeartifact")`)
	flags.String(cacmd.RegionFlag, "", "AWS region, overriding the region of the profile")
	flags.String(cacmd.DurationSecondsFlag, "", "lifetime of the authorization token in seconds, from 1 to 43200 (default 43200)")
	flags.Bool(cacmd.PruneFlag, false, "delete Unlisted package versions after a build")
	flags.String(cacmd.TempFolderFlag, "", "folder for files that only live during the invocation, overriding the configuration file (default $TMPDIR)")
	flags.String(cacmd.WorkingDirectoryFlag, "", "directory the project file is looked up in and builds are run in, overriding the configuration file")
	log.RegisterLoggingFlags(flags)

	cmd.AddCommand(resolve.New())
	cmd.AddCommand(settings.New())
	cmd.AddCommand(run.New())
	cmd.AddCommand(prune.New())
	cmd.AddCommand(version.New())
	return cmd
}
