package v1alpha1_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ocm.software/open-component-model/bindings/go/runtime"

	filesystemv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/filesystem/v1alpha1"
	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
)

const config = `type: generic.config.codeartifact/v1
configurations:
- type: filesystem.config.codeartifact/v1alpha1
  tempFolder: /var/tmp/first
  workingDirectory: /src/project
- type: generic.config.codeartifact/v1
  configurations:
  - type: filesystem.config.codeartifact
    tempFolder: /var/tmp/second
- type: repository.config.codeartifact/v1alpha1
  domain: acme
`

func TestLookupConfig(t *testing.T) {
	r := require.New(t)
	cfg, err := genericv1.Decode(strings.NewReader(config))
	r.NoError(err)
	r.True(filesystemv1alpha1.Has(cfg))

	fsCfg, err := filesystemv1alpha1.LookupConfig(cfg)
	r.NoError(err)
	assert.Equal(t, "/var/tmp/second", fsCfg.TempFolder)
	assert.Equal(t, "/src/project", fsCfg.WorkingDirectory)
}

func TestLookupConfigDefaults(t *testing.T) {
	fsCfg, err := filesystemv1alpha1.LookupConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, os.TempDir(), fsCfg.TempFolder)
	assert.Empty(t, fsCfg.WorkingDirectory)
	assert.False(t, filesystemv1alpha1.Has(nil))
}

func TestToRaw(t *testing.T) {
	r := require.New(t)
	raw, err := (&filesystemv1alpha1.Config{WorkingDirectory: "/src/project"}).ToRaw()
	r.NoError(err)
	r.Equal(filesystemv1alpha1.ConfigType, raw.Type.Name)

	cfg := &genericv1.Config{Configurations: []*runtime.Raw{raw}}
	r.True(filesystemv1alpha1.Has(cfg))
	fsCfg, err := filesystemv1alpha1.LookupConfig(cfg)
	r.NoError(err)
	r.Equal("/src/project", fsCfg.WorkingDirectory)
}
