package enum_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcolow/codeartifact-maven-extension/internal/flags/enum"
)

func TestVar(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	enum.VarP(fs, "output", "o", []string{"table", "json", "yaml"}, "output format")

	value, err := enum.Get(fs, "output")
	require.NoError(t, err)
	assert.Equal(t, "table", value, "first option is the default")

	require.NoError(t, fs.Parse([]string{"-o", "yaml"}))
	value, err = enum.Get(fs, "output")
	require.NoError(t, err)
	assert.Equal(t, "yaml", value)

	err = fs.Parse([]string{"--output", "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected one of")

	assert.Contains(t, fs.Lookup("output").Usage, "[json table yaml]")
}

func TestGet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("plain", "", "")

	_, err := enum.Get(fs, "missing")
	assert.ErrorContains(t, err, "not defined")

	_, err = enum.Get(fs, "plain")
	assert.ErrorContains(t, err, "of type string")
}

func TestNewDoesNotShareOptions(t *testing.T) {
	options := []string{"a", "b"}
	flag := enum.New(options...)
	require.NoError(t, flag.Set("b"))
	assert.Equal(t, []string{"a", "b"}, options)
	assert.Equal(t, "b", flag.String())
	assert.Panics(t, func() { enum.New() })
}
