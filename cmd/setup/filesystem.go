package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	cacmd "github.com/brcolow/codeartifact-maven-extension/cmd/internal/cmd"
	filesystemv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/filesystem/v1alpha1"
	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
	cactx "github.com/brcolow/codeartifact-maven-extension/internal/context"
	"github.com/brcolow/codeartifact-maven-extension/internal/flags/file"
	"github.com/brcolow/codeartifact-maven-extension/internal/maven"
)

// FilesystemConfig looks up the filesystem configuration in the configuration file,
// applies the --temp-folder and --working-directory flags on top of it and stores the result in the command context.
func FilesystemConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := cactx.FromContext(ctx).Configuration()

	fsCfg, err := filesystemv1alpha1.LookupConfig(cfg)
	if err != nil {
		return err
	}

	override := func(name string, target *string) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		value, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		if value == "" {
			return nil
		}
		if *target != "" && *target != value {
			slogcontext.Warn(ctx, "value of the configuration file is overridden by flag",
				slog.String("flag", name),
				slog.String("original", *target),
				slog.String("new", value),
			)
		}
		*target = value
		return nil
	}
	if err := override(cacmd.TempFolderFlag, &fsCfg.TempFolder); err != nil {
		return err
	}
	if err := override(cacmd.WorkingDirectoryFlag, &fsCfg.WorkingDirectory); err != nil {
		return err
	}

	ensureFilesystemConfig(cmd, cfg, fsCfg)

	cmd.SetContext(cactx.WithFilesystemConfig(cmd.Context(), fsCfg))
	return nil
}

// Filesystem returns the filesystem configuration of the invocation.
// Without one in the context, the defaults of an empty configuration are returned.
func Filesystem(cmd *cobra.Command) *filesystemv1alpha1.Config {
	if fsCfg := cactx.FromContext(cmd.Context()).FilesystemConfig(); fsCfg != nil {
		return fsCfg
	}
	fsCfg, _ := filesystemv1alpha1.LookupConfig(nil)
	return fsCfg
}

// ensureFilesystemConfig adds fsCfg to a loaded configuration that has no filesystem entry,
// so the configuration in the context describes the effective setup.
func ensureFilesystemConfig(cmd *cobra.Command, cfg *genericv1.Config, fsCfg *filesystemv1alpha1.Config) {
	if cfg == nil || filesystemv1alpha1.Has(cfg) {
		return
	}
	raw, err := fsCfg.ToRaw()
	if err != nil {
		slogcontext.Warn(cmd.Context(), "could not add filesystem config to the configuration", slog.String("error", err.Error()))
		return
	}
	cfg.Configurations = append(cfg.Configurations, raw)
	cmd.SetContext(cactx.WithConfiguration(cmd.Context(), cfg))
}

// ProjectFile reads the Maven project file named by the pom flag, resolved against the working directory.
// A missing default project file yields a nil POM, a missing project file passed explicitly is an error.
func ProjectFile(cmd *cobra.Command) (_ *maven.POM, err error) {
	flag, err := file.Get(cmd.Flags(), cacmd.PomFlag)
	if err != nil {
		return nil, fmt.Errorf("could not get project file flag: %w", err)
	}
	if flag.String() == "" {
		flag = &file.Flag{}
		if err := flag.Set(cacmd.PomDefault); err != nil {
			return nil, err
		}
	}

	if flag, err = flag.In(Filesystem(cmd).WorkingDirectory); err != nil {
		return nil, err
	}

	if !flag.Exists() {
		if cmd.Flags().Changed(cacmd.PomFlag) {
			return nil, fmt.Errorf("project file %s: %w", flag, fs.ErrNotExist)
		}
		slogcontext.Debug(cmd.Context(), "no project file found", slog.String("path", flag.String()))
		return nil, nil
	}

	r, err := flag.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open project file %s: %w", flag, err)
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()
	pom, err := maven.ParsePOM(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse project file %s: %w", flag, err)
	}
	slogcontext.Debug(cmd.Context(), "read project file", slog.String("path", flag.String()), slog.String("project", pom.Coordinates()))
	return pom, nil
}
