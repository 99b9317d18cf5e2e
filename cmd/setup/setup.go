// Package setup initializes the per invocation state shared by all commands.
package setup

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/brcolow/codeartifact-maven-extension/cmd/configuration"
	cacmd "github.com/brcolow/codeartifact-maven-extension/cmd/internal/cmd"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	repositoryv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/repository/v1alpha1"
	cactx "github.com/brcolow/codeartifact-maven-extension/internal/context"
)

// Config loads the configuration file into the command context.
func Config(cmd *cobra.Command) error {
	cfg, err := configuration.GetConfigForCommand(cmd)
	if err != nil {
		return err
	}
	cmd.SetContext(cactx.WithConfiguration(cmd.Context(), cfg))
	return nil
}

// RepositoryConfig merges the repository configuration from the configuration file,
// the project file and the command line flags, in increasing precedence, into the command context.
func RepositoryConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()

	fromFile, err := repositoryv1alpha1.LookupConfig(cactx.FromContext(ctx).Configuration())
	if err != nil {
		return fmt.Errorf("could not get repository configuration: %w", err)
	}

	fromPom, err := pomConfig(cmd)
	if err != nil {
		return err
	}

	fromFlags, err := flagConfig(cmd)
	if err != nil {
		return err
	}

	merged := repositoryv1alpha1.Merge(fromFile, fromPom, fromFlags)
	slogcontext.Debug(ctx, "merged repository configuration",
		slog.String("domain", merged.Domain),
		slog.String("repository", merged.Repository),
		slog.String("profile", merged.Profile),
	)
	cmd.SetContext(cactx.WithRepositoryConfig(ctx, merged))
	return nil
}

// pomConfig returns the repository fields declared by the project file, nil if there is none.
func pomConfig(cmd *cobra.Command) (*repositoryv1alpha1.Config, error) {
	pom, err := ProjectFile(cmd)
	if err != nil || pom == nil {
		return nil, err
	}
	return pom.RepositoryConfig()
}

// flagConfig returns the repository fields that were set on the command line.
func flagConfig(cmd *cobra.Command) (*repositoryv1alpha1.Config, error) {
	cfg := &repositoryv1alpha1.Config{}
	flags := cmd.Flags()

	for name, target := range map[string]*string{
		cacmd.DomainFlag:      &cfg.Domain,
		cacmd.DomainOwnerFlag: &cfg.DomainOwner,
		cacmd.RepositoryFlag:  &cfg.Repository,
		cacmd.ProfileFlag:     &cfg.Profile,
		cacmd.RegionFlag:      &cfg.Region,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		*target = value
	}

	if flags.Changed(cacmd.DurationSecondsFlag) {
		value, err := flags.GetString(cacmd.DurationSecondsFlag)
		if err != nil {
			return nil, err
		}
		if cfg.DurationSeconds, err = repositoryv1alpha1.ParseDurationSeconds(value); err != nil {
			return nil, fmt.Errorf("flag --%s: %w", cacmd.DurationSecondsFlag, err)
		}
	}

	if flags.Changed(cacmd.PruneFlag) {
		value, err := flags.GetBool(cacmd.PruneFlag)
		if err != nil {
			return nil, err
		}
		prune := repositoryv1alpha1.Prune(value)
		cfg.Prune = &prune
	}

	return cfg, nil
}

// ClientRegistry creates the client registry of the invocation unless one is already present,
// for example injected by a test.
func ClientRegistry(cmd *cobra.Command) {
	cliCtx := cactx.FromContext(cmd.Context())
	if cliCtx.ClientRegistry() != nil {
		return
	}
	var opts []codeartifact.RegistryOption
	if repo := cliCtx.RepositoryConfig(); repo != nil && repo.Region != "" {
		opts = append(opts, codeartifact.WithRegion(repo.Region))
	}
	cmd.SetContext(cactx.WithClientRegistry(cmd.Context(), codeartifact.NewClientRegistry(opts...)))
}

// Configuration returns the validated configuration of the invocation.
func Configuration(cmd *cobra.Command) (codeartifact.Configuration, error) {
	repo := cactx.FromContext(cmd.Context()).RepositoryConfig()
	if repo == nil {
		repo = &repositoryv1alpha1.Config{}
	}
	return repo.ToConfiguration()
}

// Registry returns the client registry of the invocation.
func Registry(cmd *cobra.Command) (*codeartifact.ClientRegistry, error) {
	registry := cactx.FromContext(cmd.Context()).ClientRegistry()
	if registry == nil {
		return nil, errors.New("no codeartifact client registry was set up for the command")
	}
	return registry, nil
}
