// Package hooks contains the cobra hooks shared by all commands.
package hooks

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/brcolow/codeartifact-maven-extension/cmd/setup"
	cactx "github.com/brcolow/codeartifact-maven-extension/internal/context"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/log"
)

// InvocationIDKey is the log attribute identifying all records of one CLI invocation.
const InvocationIDKey = "invocation"

// PreRunE sets up logging and the state of the invocation: the configuration file,
// the filesystem and repository configuration and the client registry.
// Configuration values are not validated here: commands validate what they need.
func PreRunE(cmd *cobra.Command, args []string) error {
	if err := LoggingPreRunE(cmd, args); err != nil {
		return err
	}

	if err := setup.Config(cmd); err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	if err := setup.FilesystemConfig(cmd); err != nil {
		return fmt.Errorf("could not set up filesystem configuration: %w", err)
	}
	if err := setup.RepositoryConfig(cmd); err != nil {
		return fmt.Errorf("could not set up repository configuration: %w", err)
	}
	setup.ClientRegistry(cmd)
	return nil
}

// LoggingPreRunE only sets up logging, for commands that need no configuration.
func LoggingPreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	slog.SetDefault(logger)

	cactx.Register(cmd)
	ctx := slogcontext.NewCtx(cmd.Context(), logger.With(slog.String(InvocationIDKey, uuid.NewString())))
	cmd.SetContext(ctx)
	return nil
}
