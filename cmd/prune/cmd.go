package prune

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	cacmd "github.com/brcolow/codeartifact-maven-extension/cmd/internal/cmd"
	"github.com/brcolow/codeartifact-maven-extension/cmd/setup"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/enum"
)

const (
	FlagDryRun         = "dry-run"
	FlagPackage        = "package"
	FlagCurrentProject = "current-project"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete Unlisted package versions from a CodeArtifact repository",
		Long: `Prune deletes all Unlisted versions of all maven packages in the configured repository.
Pruning is always enabled for this command, independent of the prune setting.

Each deletion is guarded by the expected status Unlisted: a version that was listed again
after it was enumerated is not deleted, and the run stops with an error.
The first error stops the run. Packages handled before it stay pruned.`,
		Example: `  # show what would be deleted
  codeartifact prune --dry-run

  # only prune snapshots of the com.acme group
  codeartifact prune --package 'com.acme:*'`,
		Args:              cobra.NoArgs,
		RunE:              Prune,
		DisableAutoGenTag: true,
	}

	cmd.Flags().Bool(FlagDryRun, false, "list the versions that would be deleted without deleting them")
	cmd.Flags().StringSlice(FlagPackage, nil, `only prune packages matching the glob pattern, given as "namespace:name" or "name"`)
	cmd.Flags().Bool(FlagCurrentProject, false, "only prune the package of the project file")
	enum.VarP(cmd.Flags(), cacmd.OutputFlag, cacmd.OutputFlagShorthand, []string{
		FormatTable, FormatJSON, FormatYAML,
	}, "output format of the prune report")

	return cmd
}

func Prune(cmd *cobra.Command, _ []string) error {
	output, err := enum.Get(cmd.Flags(), cacmd.OutputFlag)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool(FlagDryRun)
	if err != nil {
		return fmt.Errorf("getting dry-run flag failed: %w", err)
	}
	patterns, err := cmd.Flags().GetStringSlice(FlagPackage)
	if err != nil {
		return fmt.Errorf("getting package flag failed: %w", err)
	}
	currentProject, err := cmd.Flags().GetBool(FlagCurrentProject)
	if err != nil {
		return fmt.Errorf("getting current-project flag failed: %w", err)
	}
	if currentProject {
		pattern, err := projectPattern(cmd)
		if err != nil {
			return err
		}
		patterns = append(patterns, pattern)
	}

	cfg, err := setup.Configuration(cmd)
	if err != nil {
		return err
	}
	registry, err := setup.Registry(cmd)
	if err != nil {
		return err
	}
	pruner, err := codeartifact.NewPruner(registry,
		codeartifact.WithDryRun(dryRun),
		codeartifact.WithPackageFilter(patterns...),
	)
	if err != nil {
		return err
	}

	report, pruneErr := pruner.Prune(cmd.Context(), cfg.WithPrune(true))

	data, err := encodeReport(output, report)
	if err != nil {
		return errors.Join(pruneErr, err)
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return errors.Join(pruneErr, err)
	}
	if pruneErr != nil {
		return fmt.Errorf("pruning repository %s failed: %w", cfg.Repository, pruneErr)
	}
	return nil
}

func projectPattern(cmd *cobra.Command) (string, error) {
	pom, err := setup.ProjectFile(cmd)
	if err != nil {
		return "", fmt.Errorf("--%s needs a project file: %w", FlagCurrentProject, err)
	}
	if pom == nil {
		return "", fmt.Errorf("--%s needs a project file: %s: %w", FlagCurrentProject, cacmd.PomDefault, fs.ErrNotExist)
	}
	identity := pom.Identity()
	if identity.Name == "" {
		return "", errors.New("project file declares no artifactId")
	}
	return glob.QuoteMeta(identity.String()), nil
}
