package codeartifact_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
)

func validConfiguration() codeartifact.Configuration {
	return codeartifact.Configuration{
		Domain:          "acme",
		DomainOwner:     "111122223333",
		Repository:      "maven-repo",
		Profile:         "codeartifact",
		DurationSeconds: 43200,
	}
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*codeartifact.Configuration)
		wantFields []string
	}{
		{
			name:   "valid",
			mutate: func(*codeartifact.Configuration) {},
		},
		{
			name:   "lower duration bound",
			mutate: func(c *codeartifact.Configuration) { c.DurationSeconds = 1 },
		},
		{
			name:       "zero duration",
			mutate:     func(c *codeartifact.Configuration) { c.DurationSeconds = 0 },
			wantFields: []string{"durationSeconds"},
		},
		{
			name:       "duration above ceiling",
			mutate:     func(c *codeartifact.Configuration) { c.DurationSeconds = 43201 },
			wantFields: []string{"durationSeconds"},
		},
		{
			name: "missing values",
			mutate: func(c *codeartifact.Configuration) {
				c.Domain = ""
				c.Repository = "  "
			},
			wantFields: []string{"domain", "repository"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfiguration()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			joined, ok := err.(interface{ Unwrap() []error })
			require.True(t, ok, "expected joined errors, got %T", err)
			var fields []string
			for _, e := range joined.Unwrap() {
				var cfgErr *codeartifact.ConfigurationError
				require.ErrorAs(t, e, &cfgErr)
				fields = append(fields, cfgErr.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "1", want: 1},
		{input: " 900 ", want: 900},
		{input: "43200", want: 43200},
		{input: "0", wantErr: true},
		{input: "43201", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "twelve hours", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := codeartifact.ParseDurationSeconds(tt.input)
			if tt.wantErr {
				var cfgErr *codeartifact.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "durationSeconds", cfgErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrune(t *testing.T) {
	prune, err := codeartifact.ParsePrune("true")
	require.NoError(t, err)
	assert.True(t, prune)

	prune, err = codeartifact.ParsePrune("false")
	require.NoError(t, err)
	assert.False(t, prune)

	_, err = codeartifact.ParsePrune("sometimes")
	var cfgErr *codeartifact.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "prune", cfgErr.Field)
	assert.Error(t, errors.Unwrap(err))
}

func TestConfiguration_WithPrune(t *testing.T) {
	cfg := validConfiguration()
	pruning := cfg.WithPrune(true)
	assert.True(t, pruning.Prune)
	assert.False(t, cfg.Prune, "original configuration must not change")
	assert.Contains(t, pruning.String(), "prune=true")
}
