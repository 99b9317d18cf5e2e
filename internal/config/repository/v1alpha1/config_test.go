package v1alpha1_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
	"github.com/brcolow/codeartifact-maven-extension/internal/config/repository/v1alpha1"
)

func decode(t *testing.T, content string) *genericv1.Config {
	t.Helper()
	cfg, err := genericv1.Decode(strings.NewReader(content))
	require.NoError(t, err)
	return cfg
}

func TestLookupConfig(t *testing.T) {
	cfg := decode(t, `
type: generic.config.codeartifact/v1
configurations:
  - type: repository.config.codeartifact/v1alpha1
    domain: acme
    domainOwner: "111122223333"
    repository: maven-repo
    durationSeconds: 900
  - type: some.other.config/v1
    anything: goes
  - type: generic.config.codeartifact/v1
    configurations:
      - type: repository.config.codeartifact
        repository: snapshots
        durationSeconds: "3600"
        prune: "true"
`)

	repo, err := v1alpha1.LookupConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "acme", repo.Domain)
	assert.Equal(t, "111122223333", repo.DomainOwner)
	assert.Equal(t, "snapshots", repo.Repository, "later entries win")
	require.NotNil(t, repo.DurationSeconds)
	assert.Equal(t, v1alpha1.DurationSeconds(3600), *repo.DurationSeconds)
	require.NotNil(t, repo.Prune)
	assert.True(t, bool(*repo.Prune))
}

func TestLookupConfigWithoutFile(t *testing.T) {
	repo, err := v1alpha1.LookupConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, repo.Domain)
	assert.Nil(t, repo.DurationSeconds)
}

func TestLookupConfigRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "duration above ceiling", entry: "durationSeconds: 43201"},
		{name: "zero duration", entry: "durationSeconds: 0"},
		{name: "duration not numeric", entry: "durationSeconds: twelve"},
		{name: "prune not boolean", entry: "prune: sometimes"},
		{name: "domain owner not an account id", entry: `domainOwner: "acme"`},
		{name: "unknown field", entry: "durationsSeconds: 900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := decode(t, `
type: generic.config.codeartifact/v1
configurations:
  - type: repository.config.codeartifact/v1alpha1
    `+tt.entry+"\n")
			_, err := v1alpha1.LookupConfig(cfg)
			var cfgErr *codeartifact.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "config", cfgErr.Field)
		})
	}
}

func TestDurationSecondsUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    v1alpha1.DurationSeconds
		wantErr bool
	}{
		{input: `{"durationSeconds": 900}`, want: 900},
		{input: `{"durationSeconds": "43200"}`, want: 43200},
		{input: `{"durationSeconds": 1.5}`, wantErr: true},
		{input: `{"durationSeconds": 43201}`, wantErr: true},
		{input: `{"durationSeconds": "abc"}`, wantErr: true},
		{input: `{"durationSeconds": true}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var cfg v1alpha1.Config
			err := json.Unmarshal([]byte(tt.input), &cfg)
			if tt.wantErr {
				var cfgErr *codeartifact.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg.DurationSeconds)
			assert.Equal(t, tt.want, *cfg.DurationSeconds)
		})
	}
}

func TestPruneUnmarshal(t *testing.T) {
	var cfg v1alpha1.Config
	require.NoError(t, json.Unmarshal([]byte(`{"prune": true}`), &cfg))
	assert.True(t, bool(*cfg.Prune))

	require.NoError(t, json.Unmarshal([]byte(`{"prune": "false"}`), &cfg))
	assert.False(t, bool(*cfg.Prune))

	assert.Error(t, json.Unmarshal([]byte(`{"prune": 1}`), &cfg))
}

func TestMerge(t *testing.T) {
	fromFile := &v1alpha1.Config{Domain: "acme", DomainOwner: "111122223333", Repository: "releases", Profile: "ci"}
	duration, err := v1alpha1.ParseDurationSeconds("1800")
	require.NoError(t, err)
	fromPom := &v1alpha1.Config{Repository: "maven-repo", DurationSeconds: duration}
	prune, err := v1alpha1.ParsePrune("true")
	require.NoError(t, err)
	fromFlags := &v1alpha1.Config{Profile: "dev", Prune: prune}

	merged := v1alpha1.Merge(fromFile, nil, fromPom, fromFlags)

	assert.Equal(t, "acme", merged.Domain)
	assert.Equal(t, "maven-repo", merged.Repository)
	assert.Equal(t, "dev", merged.Profile)
	assert.Equal(t, v1alpha1.DurationSeconds(1800), *merged.DurationSeconds)
	assert.True(t, bool(*merged.Prune))

	*fromPom.DurationSeconds = 60
	assert.Equal(t, v1alpha1.DurationSeconds(1800), *merged.DurationSeconds, "merge copies values")
}

func TestToConfiguration(t *testing.T) {
	t.Run("defaults for absent values", func(t *testing.T) {
		cfg, err := (&v1alpha1.Config{Domain: "acme", DomainOwner: "111122223333", Repository: "maven-repo"}).ToConfiguration()
		require.NoError(t, err)
		assert.Equal(t, codeartifact.Configuration{
			Domain:          "acme",
			DomainOwner:     "111122223333",
			Repository:      "maven-repo",
			Profile:         "codeartifact",
			DurationSeconds: 43200,
			Prune:           false,
		}, cfg)
	})

	t.Run("explicit values", func(t *testing.T) {
		duration := v1alpha1.DurationSeconds(60)
		prune := v1alpha1.Prune(true)
		cfg, err := (&v1alpha1.Config{
			Domain: "acme", DomainOwner: "111122223333", Repository: "maven-repo",
			Profile: "ci", DurationSeconds: &duration, Prune: &prune,
		}).ToConfiguration()
		require.NoError(t, err)
		assert.Equal(t, "ci", cfg.Profile)
		assert.Equal(t, 60, cfg.DurationSeconds)
		assert.True(t, cfg.Prune)
	})

	t.Run("missing required values", func(t *testing.T) {
		_, err := (&v1alpha1.Config{Domain: "acme"}).ToConfiguration()
		var cfgErr *codeartifact.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.ErrorContains(t, err, "domainOwner")
		assert.ErrorContains(t, err, "repository")
	})
}

func TestValidateRawJSON(t *testing.T) {
	require.NoError(t, v1alpha1.ValidateRawJSON([]byte(`{"type":"repository.config.codeartifact/v1alpha1","domain":"acme","region":"eu-central-1"}`)))
	require.Error(t, v1alpha1.ValidateRawJSON([]byte(`{"type":"repository.config.codeartifact/v1alpha1","region":"Frankfurt"}`)))
	require.Error(t, v1alpha1.ValidateRawJSON([]byte(`{"domain":"acme"}`)))
}
