package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testConfig = `type: generic.config.codeartifact/v1
configurations:
- type: repository.config.codeartifact/v1alpha1
  domain: acme
`

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(ConfigEnvironmentKey, "")
	t.Chdir(dir)
	return dir
}

func TestGetConfigPaths(t *testing.T) {
	r := require.New(t)
	dir := isolate(t)

	r.Empty(GetConfigPaths())

	xdgFile := filepath.Join(dir, "xdg", ConfigFileName)
	r.NoError(os.MkdirAll(filepath.Dir(xdgFile), 0o755))
	r.NoError(os.WriteFile(xdgFile, []byte(testConfig), 0o600))

	envFile := filepath.Join(dir, "env.yaml")
	r.NoError(os.WriteFile(envFile, []byte(testConfig), 0o600))
	t.Setenv(ConfigEnvironmentKey, envFile)

	// found through the working directory, the home lookup stops at the xdg file
	homeFile := filepath.Join(dir, NestedConfigFileName)
	r.NoError(os.WriteFile(homeFile, []byte(testConfig), 0o600))

	paths := GetConfigPaths()
	r.Equal([]string{envFile, xdgFile, homeFile}, paths)
}

func TestGetConfigForCommand(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		r := require.New(t)
		dir := isolate(t)
		path := filepath.Join(dir, "config.yaml")
		r.NoError(os.WriteFile(path, []byte(testConfig), 0o600))

		cmd := &cobra.Command{}
		RegisterConfigFlag(cmd)
		r.NoError(cmd.ParseFlags([]string{"--" + ConfigCommandArgument, path}))

		cfg, err := GetConfigForCommand(cmd)
		r.NoError(err)
		r.Len(cfg.Configurations, 1)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		r := require.New(t)
		dir := isolate(t)

		cmd := &cobra.Command{}
		RegisterConfigFlag(cmd)
		r.NoError(cmd.ParseFlags([]string{"--" + ConfigCommandArgument, filepath.Join(dir, "missing.yaml")}))

		_, err := GetConfigForCommand(cmd)
		r.ErrorIs(err, os.ErrNotExist)
	})

	t.Run("explicit directory is rejected", func(t *testing.T) {
		r := require.New(t)
		dir := isolate(t)

		cmd := &cobra.Command{}
		RegisterConfigFlag(cmd)
		r.NoError(cmd.ParseFlags([]string{"--" + ConfigCommandArgument, dir}))

		_, err := GetConfigForCommand(cmd)
		r.ErrorContains(err, "is a directory")
	})

	t.Run("flag not registered", func(t *testing.T) {
		_, err := GetConfigForCommand(&cobra.Command{})
		require.ErrorContains(t, err, "flag accessed but not defined")
	})

	t.Run("broken discovered file is skipped", func(t *testing.T) {
		r := require.New(t)
		dir := isolate(t)
		r.NoError(os.WriteFile(filepath.Join(dir, NestedConfigFileName), []byte("type: nonsense/v9\n"), 0o600))

		cmd := &cobra.Command{}
		RegisterConfigFlag(cmd)
		r.NoError(cmd.ParseFlags(nil))
		cfg, err := GetConfigForCommand(cmd)
		r.NoError(err)
		r.Empty(cfg.Configurations)
	})

	t.Run("nothing found", func(t *testing.T) {
		r := require.New(t)
		isolate(t)

		cmd := &cobra.Command{}
		RegisterConfigFlag(cmd)
		r.NoError(cmd.ParseFlags(nil))
		cfg, err := GetConfigForCommand(cmd)
		r.NoError(err)
		r.Nil(cfg)
	})
}
