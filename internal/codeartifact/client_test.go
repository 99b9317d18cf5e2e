package codeartifact_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact/codeartifacttest"
)

// countingFactory hands out a new fake per call and counts the calls.
type countingFactory struct {
	calls    int
	profiles []string
	err      error
}

func (f *countingFactory) create(_ context.Context, profile string) (codeartifact.API, error) {
	f.calls++
	f.profiles = append(f.profiles, profile)
	if f.err != nil {
		return nil, f.err
	}
	return codeartifacttest.New(), nil
}

func TestClientRegistry_SameProfileReturnsCachedHandle(t *testing.T) {
	factory := &countingFactory{}
	registry := codeartifact.NewClientRegistry(codeartifact.WithClientFactory(factory.create))

	first, err := registry.GetOrCreate(t.Context(), "codeartifact")
	require.NoError(t, err)
	second, err := registry.GetOrCreate(t.Context(), "codeartifact")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, factory.calls)
}

func TestClientRegistry_FirstProfileWins(t *testing.T) {
	factory := &countingFactory{}
	registry := codeartifact.NewClientRegistry(codeartifact.WithClientFactory(factory.create))

	first, err := registry.GetOrCreate(t.Context(), "first")
	require.NoError(t, err)
	second, err := registry.GetOrCreate(t.Context(), "second")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []string{"first"}, factory.profiles)
	assert.Equal(t, "first", registry.Profile())
}

func TestClientRegistry_FactoryErrorIsNotCached(t *testing.T) {
	factory := &countingFactory{err: errors.New("no such profile")}
	registry := codeartifact.NewClientRegistry(codeartifact.WithClientFactory(factory.create))

	_, err := registry.GetOrCreate(t.Context(), "missing")
	var credErr *codeartifact.CredentialResolutionError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "missing", credErr.Profile)
	assert.Empty(t, registry.Profile())

	factory.err = nil
	_, err = registry.GetOrCreate(t.Context(), "codeartifact")
	require.NoError(t, err)
	assert.Equal(t, 2, factory.calls)
	assert.Equal(t, "codeartifact", registry.Profile())
}

func writeSharedConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config")
	credentialsFile := filepath.Join(dir, "credentials")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))
	require.NoError(t, os.WriteFile(credentialsFile, nil, 0o600))
	t.Setenv("AWS_CONFIG_FILE", configFile)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", credentialsFile)
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
}

func TestSDKClientFactory_UnknownProfile(t *testing.T) {
	writeSharedConfig(t, "[default]\nregion = us-east-1\n")
	registry := codeartifact.NewClientRegistry(codeartifact.WithRegion("us-east-1"))

	_, err := registry.GetOrCreate(t.Context(), "does-not-exist")
	var credErr *codeartifact.CredentialResolutionError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, "does-not-exist", credErr.Profile)
}

func TestSDKClientFactory_KnownProfile(t *testing.T) {
	writeSharedConfig(t, `[profile codeartifact]
region = us-west-2
aws_access_key_id = AKIDEXAMPLE
aws_secret_access_key = wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY
`)
	registry := codeartifact.NewClientRegistry()

	client, err := registry.GetOrCreate(t.Context(), "codeartifact")
	require.NoError(t, err)
	assert.NotNil(t, client)
}
