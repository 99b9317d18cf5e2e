// Package log configures the process logger from command line flags.
//
// Logs go to stderr by default, because several commands print machine readable results
// (environment exports, settings files) to stdout.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/brcolow/codeartifact-maven-extension/internal/flags/enum"
)

const (
	// FormatFlagName selects the handler that encodes log records.
	FormatFlagName = "logformat"

	// FormatText writes records with a [slog.TextHandler], the default.
	FormatText = "text"
	// FormatJSON writes records with a [slog.JSONHandler], one object per line.
	FormatJSON = "json"
)

const (
	// LevelFlagName sets the minimum level of written records.
	LevelFlagName = "loglevel"

	LevelDebug = "debug"
	// LevelInfo is the default level.
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

const (
	// OutputFlagName selects the stream log records are written to.
	OutputFlagName = "logoutput"

	OutputStdout = "stdout"
	// OutputStderr is the default, so that results printed to stdout stay parseable.
	OutputStderr = "stderr"
)

// RegisterLoggingFlags adds the logformat, loglevel and logoutput flags to flagset.
// All three are enum flags whose first allowed value is the default,
// so a command without logging flags logs text records of level info and above to stderr.
// The flags are read back by [GetBaseLogger].
//
// Example:
//
//	--logformat json --loglevel debug --logoutput stdout
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	enum.Var(flagset, FormatFlagName, []string{
		FormatText,
		FormatJSON,
	}, `format of individual log records
   text: human readable key=value records
   json: one JSON object per record`)

	enum.Var(flagset, LevelFlagName, []string{
		LevelInfo,
		LevelDebug,
		LevelWarn,
		LevelError,
	}, `minimum level of records that are written`)

	enum.Var(flagset, OutputFlagName, []string{
		OutputStderr,
		OutputStdout,
	}, `destination of log records`)
}

// GetBaseLogger builds a logger from the logging flags of cmd.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := levelFromCommand(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to get log level: %w", err)
	}

	format, err := enum.Get(cmd.Flags(), FormatFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log format from the command flag: %w", err)
	}

	output, err := enum.Get(cmd.Flags(), OutputFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log output from the command flag: %w", err)
	}

	var w io.Writer
	switch output {
	case OutputStdout:
		w = cmd.OutOrStdout()
	case OutputStderr:
		w = cmd.ErrOrStderr()
	default:
		return nil, fmt.Errorf("invalid log output: %s", output)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

func levelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	value, err := enum.Get(cmd.Flags(), LevelFlagName)
	if err != nil {
		return slog.LevelInfo, err
	}
	switch value {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", value)
	}
}
