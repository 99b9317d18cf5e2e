package settings

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/brcolow/codeartifact-maven-extension/cmd/resolve"
	"github.com/brcolow/codeartifact-maven-extension/internal/maven"
)

const (
	FlagOutputFile      = "output-file"
	FlagLocalRepository = "local-repository"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Write Maven settings for a CodeArtifact repository",
		Long: `Settings resolves the configured CodeArtifact repository and writes a Maven settings file that

- authenticates against the repository with the issued token,
- mirrors Maven Central through the repository,
- activates a profile that declares the repository for dependencies and plugins,
- sets altDeploymentRepository so that "mvn deploy" publishes to the repository.

The settings contain the authorization token. Files are created readable by the current user only.`,
		Example: `  codeartifact settings --output-file target/codeartifact-settings.xml
  mvn -s target/codeartifact-settings.xml verify`,
		Args:              cobra.NoArgs,
		RunE:              WriteSettings,
		DisableAutoGenTag: true,
	}

	cmd.Flags().String(FlagOutputFile, "", "file to write the settings to, stdout if empty")
	cmd.Flags().String(FlagLocalRepository, "", "local repository directory of the build")

	return cmd
}

func WriteSettings(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString(FlagOutputFile)
	if err != nil {
		return fmt.Errorf("getting output-file flag failed: %w", err)
	}
	local, err := cmd.Flags().GetString(FlagLocalRepository)
	if err != nil {
		return fmt.Errorf("getting local-repository flag failed: %w", err)
	}

	descriptor, err := resolve.ResolveDescriptor(cmd)
	if err != nil {
		return err
	}

	var opts []maven.SettingsOption
	if local != "" {
		opts = append(opts, maven.WithLocalRepository(local))
	}
	settings, err := maven.NewSettings(descriptor, opts...)
	if err != nil {
		return err
	}

	if path == "" {
		return settings.Encode(cmd.OutOrStdout())
	}
	if err := settings.WriteFile(path); err != nil {
		return err
	}
	slogcontext.Info(cmd.Context(), "wrote maven settings", slog.String("path", path), slog.String("endpoint", descriptor.EndpointURL))
	return nil
}
