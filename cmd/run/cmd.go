package run

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/brcolow/codeartifact-maven-extension/cmd/resolve"
	"github.com/brcolow/codeartifact-maven-extension/cmd/setup"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	"github.com/brcolow/codeartifact-maven-extension/internal/maven"
)

const (
	FlagInjectSettings = "inject-settings"
	FlagSettingsFile   = "settings-file"

	// EnvSettings points the build at the generated settings file.
	EnvSettings = "CODEARTIFACT_SETTINGS"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- <build command> [args...]",
		Short: "Run a build against an authenticated CodeArtifact repository",
		Long: fmt.Sprintf(`Run resolves the configured CodeArtifact repository, writes Maven settings for it and
executes the given build command.

The settings file is written to the temp folder and passed to the build as "-s <file>" directly after the command name,
unless --%[1]s=false is given. The build additionally receives the environment variables
%[2]s, %[3]s and %[4]s.

The build runs in the working directory, if one is configured.
Any failure to resolve the repository aborts before the build is started.
After the build, Unlisted package versions are pruned if pruning is enabled in the configuration.
Pruning failures are logged and never change the exit code, which is the exit code of the build.`,
			FlagInjectSettings, resolve.EnvRepositoryURL, resolve.EnvAuthToken, EnvSettings),
		Example: `  codeartifact run -- mvn -B deploy
  codeartifact run --prune -- ./mvnw verify
  codeartifact run --inject-settings=false -- gradle publish`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              Run,
		DisableAutoGenTag: true,
	}

	cmd.Flags().Bool(FlagInjectSettings, true, `pass the generated settings to the build with "-s"`)
	cmd.Flags().String(FlagSettingsFile, "", "keep the generated settings at this path instead of a temporary file")

	return cmd
}

func Run(cmd *cobra.Command, args []string) (err error) {
	inject, err := cmd.Flags().GetBool(FlagInjectSettings)
	if err != nil {
		return fmt.Errorf("getting inject-settings flag failed: %w", err)
	}
	settingsFile, err := cmd.Flags().GetString(FlagSettingsFile)
	if err != nil {
		return fmt.Errorf("getting settings-file flag failed: %w", err)
	}

	cfg, err := setup.Configuration(cmd)
	if err != nil {
		return err
	}
	descriptor, err := resolve.ResolveDescriptor(cmd)
	if err != nil {
		return err
	}

	settings, err := maven.NewSettings(descriptor)
	if err != nil {
		return err
	}
	fsCfg := setup.Filesystem(cmd)
	if settingsFile == "" {
		dir, tmpErr := os.MkdirTemp(fsCfg.TempFolder, "codeartifact-")
		if tmpErr != nil {
			return fmt.Errorf("failed to create temporary settings directory: %w", tmpErr)
		}
		defer func() {
			err = errors.Join(err, os.RemoveAll(dir))
		}()
		settingsFile = filepath.Join(dir, "settings.xml")
	}
	if err := settings.WriteFile(settingsFile); err != nil {
		return err
	}

	buildErr := build(cmd, fsCfg.WorkingDirectory, BuildCommand(args, settingsFile, inject), Environment(descriptor, settingsFile))

	if cfg.Prune {
		prune(cmd, cfg)
	}

	return buildErr
}

// BuildCommand returns the command line of the build, with the settings file injected if requested.
func BuildCommand(args []string, settingsFile string, inject bool) []string {
	if !inject {
		return args
	}
	command := make([]string, 0, len(args)+2)
	command = append(command, args[0], "-s", settingsFile)
	return append(command, args[1:]...)
}

// Environment returns the variables added to the environment of the build.
func Environment(descriptor *codeartifact.RepositoryDescriptor, settingsFile string) []string {
	return []string{
		resolve.EnvRepositoryURL + "=" + descriptor.EndpointURL,
		resolve.EnvAuthToken + "=" + descriptor.Token,
		EnvSettings + "=" + settingsFile,
	}
}

// build runs command in dir, or in the current directory if dir is empty.
func build(cmd *cobra.Command, dir string, command, env []string) error {
	ctx := cmd.Context()
	c := exec.CommandContext(ctx, command[0], command[1:]...)
	c.Dir = dir
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	c.Env = append(os.Environ(), env...)

	slogcontext.Info(ctx, "starting build", slog.String("command", command[0]), slog.Int("args", len(command)-1))
	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			slogcontext.Warn(ctx, "build failed", slog.Int("exitCode", exitErr.ExitCode()))
			return err
		}
		return fmt.Errorf("could not start build: %w", err)
	}
	slogcontext.Info(ctx, "build finished")
	return nil
}

// prune runs after the build. Its errors only abort pruning.
func prune(cmd *cobra.Command, cfg codeartifact.Configuration) {
	ctx := cmd.Context()
	registry, err := setup.Registry(cmd)
	if err != nil {
		slogcontext.Error(ctx, "pruning skipped", slog.String("error", err.Error()))
		return
	}
	pruner, err := codeartifact.NewPruner(registry)
	if err != nil {
		slogcontext.Error(ctx, "pruning skipped", slog.String("error", err.Error()))
		return
	}
	report, err := pruner.Prune(ctx, cfg)
	if err != nil {
		slogcontext.Error(ctx, "pruning failed", slog.String("error", err.Error()), slog.Int("deleted", report.DeletedVersions()))
		return
	}
	slogcontext.Info(ctx, "pruning finished", slog.Int("packages", len(report.Packages)), slog.Int("deleted", report.DeletedVersions()))
}
