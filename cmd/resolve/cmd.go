package resolve

import (
	"fmt"

	"github.com/spf13/cobra"

	cacmd "github.com/brcolow/codeartifact-maven-extension/cmd/internal/cmd"
	"github.com/brcolow/codeartifact-maven-extension/cmd/setup"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/enum"
)

const FlagShowToken = "show-token"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the authenticated endpoint of a CodeArtifact repository",
		Long: `Resolve looks up the maven endpoint of the configured CodeArtifact repository and issues
an authorization token for its domain.

The token is redacted in table, json and yaml output unless --show-token is given.
The env format always prints the token, as export statements that can be evaluated by a shell.`,
		Example: `  # show the endpoint of the repository configured in pom.xml
  codeartifact resolve

  # export the endpoint and token into the current shell
  eval "$(codeartifact resolve --domain acme --domain-owner 111122223333 --repository maven-repo -o env)"`,
		Args:              cobra.NoArgs,
		RunE:              Resolve,
		DisableAutoGenTag: true,
	}

	enum.VarP(cmd.Flags(), cacmd.OutputFlag, cacmd.OutputFlagShorthand, []string{
		FormatTable, FormatJSON, FormatYAML, FormatEnv,
	}, "output format of the resolved repository")
	cmd.Flags().Bool(FlagShowToken, false, "print the authorization token in table, json and yaml output")

	return cmd
}

func Resolve(cmd *cobra.Command, _ []string) error {
	output, err := enum.Get(cmd.Flags(), cacmd.OutputFlag)
	if err != nil {
		return fmt.Errorf("getting output flag failed: %w", err)
	}
	showToken, err := cmd.Flags().GetBool(FlagShowToken)
	if err != nil {
		return fmt.Errorf("getting show-token flag failed: %w", err)
	}

	descriptor, err := ResolveDescriptor(cmd)
	if err != nil {
		return err
	}

	data, err := encodeDescriptor(output, descriptor, showToken)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// ResolveDescriptor validates the configuration of cmd and resolves the repository.
func ResolveDescriptor(cmd *cobra.Command) (*codeartifact.RepositoryDescriptor, error) {
	cfg, err := setup.Configuration(cmd)
	if err != nil {
		return nil, err
	}
	registry, err := setup.Registry(cmd)
	if err != nil {
		return nil, err
	}
	descriptor, err := codeartifact.NewResolver(registry).Resolve(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("resolving repository %s failed: %w", cfg.Repository, err)
	}
	return descriptor, nil
}
