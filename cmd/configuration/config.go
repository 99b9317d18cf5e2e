// Package configuration locates and loads the configuration file of the codeartifact CLI.
package configuration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/file"
)

const (
	// ConfigDirectoryName is the directory holding ConfigFileName below a lookup location.
	ConfigDirectoryName = ".codeartifact"
	// ConfigFileName is looked up relative to each lookup location.
	ConfigFileName = ConfigDirectoryName + "/config"
	// NestedConfigFileName is the single file alternative to ConfigFileName.
	NestedConfigFileName = ".codeartifactconfig"
	// ConfigEnvironmentKey names the environment variable holding the path of a configuration file.
	ConfigEnvironmentKey = "CODEARTIFACT_CONFIG"
	// ConfigCommandArgument is the name of the persistent flag selecting one configuration file.
	ConfigCommandArgument = "config"
)

// RegisterConfigFlag adds the --config path flag to the persistent flags of cmd,
// so every sub command accepts it.
func RegisterConfigFlag(cmd *cobra.Command) {
	file.Var(cmd.PersistentFlags(), ConfigCommandArgument, "", `configuration file to use.
Without this flag the file is looked up in the following locations, all found files are merged in this order:
1. the path in the CODEARTIFACT_CONFIG environment variable
2. $XDG_CONFIG_HOME, $HOME/.config or $HOME:
- <dir>/.codeartifact/config
- <dir>/.codeartifactconfig
3. the working directory (same file names)
4. the directory of the executable (same file names)`)
}

// GetConfigForCommand loads the file given by the config flag or, if the flag is empty,
// all discovered files. It returns nil without an error when no file exists.
// A file given explicitly must load; discovered files that fail to load are skipped.
func GetConfigForCommand(cmd *cobra.Command) (*genericv1.Config, error) {
	flag, err := file.Get(cmd.Flags(), ConfigCommandArgument)
	if err != nil {
		return nil, fmt.Errorf("could not get configuration flag: %w", err)
	}
	if path := flag.String(); path != "" {
		cfg, err := decodeFlag(flag)
		if err != nil {
			return nil, fmt.Errorf("could not load configuration file %s: %w", path, err)
		}
		return genericv1.FlatMap(cfg), nil
	}

	paths := GetConfigPaths()
	if len(paths) == 0 {
		slog.DebugContext(cmd.Context(), "no configuration file found")
		return nil, nil
	}
	cfgs := make([]*genericv1.Config, 0, len(paths))
	for _, path := range paths {
		cfg, err := GetConfigFromPath(path)
		if err != nil {
			slog.ErrorContext(cmd.Context(), "configuration file was skipped due to an error loading it",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		slog.DebugContext(cmd.Context(), "configuration file loaded", slog.String("path", path))
		cfgs = append(cfgs, cfg)
	}
	return genericv1.FlatMap(cfgs...), nil
}

func decodeFlag(flag *file.Flag) (_ *genericv1.Config, err error) {
	r, err := flag.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()
	return genericv1.Decode(r)
}

// GetConfigFromPath decodes the configuration file at path.
func GetConfigFromPath(path string) (_ *genericv1.Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return genericv1.Decode(file)
}

// GetConfigPaths returns the existing configuration files in lookup order, without duplicates.
func GetConfigPaths() []string {
	var paths []string
	add := func(path string) {
		if path == "" {
			return
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		for _, existing := range paths {
			if existing == path {
				return
			}
		}
		paths = append(paths, path)
	}

	add(getFromEnvironment())
	add(getFromXDGOrHomeDir())
	if wd, err := os.Getwd(); err == nil {
		add(checkConfigPaths(wd))
	}
	if ex, err := os.Executable(); err == nil {
		add(checkConfigPaths(filepath.Dir(ex)))
	}
	return paths
}

// getFromEnvironment returns the file named by ConfigEnvironmentKey if it exists.
// A variable pointing nowhere is ignored like an unset one.
func getFromEnvironment() string {
	if env := os.Getenv(ConfigEnvironmentKey); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env
		}
	}
	return ""
}

// getFromXDGOrHomeDir returns the first file found in $XDG_CONFIG_HOME, $HOME/.config and $HOME.
func getFromXDGOrHomeDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if path := checkConfigPaths(xdg); path != "" {
			return path
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		if path := checkConfigPaths(filepath.Join(home, ".config")); path != "" {
			return path
		}
		return checkConfigPaths(home)
	}
	return ""
}

// checkConfigPaths returns the first regular file of ConfigFileName and NestedConfigFileName below base.
func checkConfigPaths(base string) string {
	for _, name := range []string{ConfigFileName, NestedConfigFileName} {
		path := filepath.Join(base, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
