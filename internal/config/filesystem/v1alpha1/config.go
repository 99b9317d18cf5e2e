// Package v1alpha1 contains the filesystem configuration entry of the codeartifact CLI.
package v1alpha1

import (
	"encoding/json"
	"fmt"
	"os"

	"ocm.software/open-component-model/bindings/go/runtime"

	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
)

const (
	ConfigType = "filesystem.config.codeartifact"
	Version    = "v1alpha1"
)

var scheme = runtime.NewScheme()

func init() {
	scheme.MustRegisterWithAlias(&Config{},
		runtime.NewVersionedType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config describes where the CLI reads project files from and where it puts ephemeral files.
type Config struct {
	Type runtime.Type `json:"type"`

	// TempFolder holds generated files that only live for one invocation, such as the
	// settings of a build. If not defined, os.TempDir is used.
	TempFolder string `json:"tempFolder,omitempty"`

	// WorkingDirectory resolves relative project file paths.
	// If not defined, the current working directory is used.
	WorkingDirectory string `json:"workingDirectory,omitempty"`
}

func (c *Config) GetType() runtime.Type {
	return c.Type
}

func (c *Config) SetType(typ runtime.Type) {
	c.Type = typ
}

func (c *Config) DeepCopyTyped() runtime.Typed {
	return c.DeepCopy()
}

func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// LookupConfig merges all filesystem entries of cfg in declaration order.
// The temp folder defaults to os.TempDir.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	merged := &Config{Type: runtime.NewVersionedType(ConfigType, Version)}
	if cfg != nil {
		filtered := genericv1.Filter(genericv1.FlatMap(cfg),
			runtime.NewVersionedType(ConfigType, Version),
			runtime.NewUnversionedType(ConfigType),
		)
		configs := make([]*Config, 0, len(filtered.Configurations))
		for _, entry := range filtered.Configurations {
			var config Config
			if err := scheme.Convert(entry, &config); err != nil {
				return nil, fmt.Errorf("failed to decode filesystem config: %w", err)
			}
			configs = append(configs, &config)
		}
		merged = Merge(configs...)
	}

	if merged.TempFolder == "" {
		merged.TempFolder = os.TempDir()
	}
	return merged, nil
}

// Merge combines configs so that a field set in a later config overrides earlier ones.
func Merge(configs ...*Config) *Config {
	merged := &Config{Type: runtime.NewVersionedType(ConfigType, Version)}
	for _, config := range configs {
		if config == nil {
			continue
		}
		if config.TempFolder != "" {
			merged.TempFolder = config.TempFolder
		}
		if config.WorkingDirectory != "" {
			merged.WorkingDirectory = config.WorkingDirectory
		}
	}
	return merged
}

// Has reports whether cfg contains a filesystem entry.
func Has(cfg *genericv1.Config) bool {
	if cfg == nil {
		return false
	}
	filtered := genericv1.Filter(genericv1.FlatMap(cfg),
		runtime.NewVersionedType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
	return len(filtered.Configurations) > 0
}

// ToRaw encodes c as an entry of a generic configuration.
func (c *Config) ToRaw() (*runtime.Raw, error) {
	out := c.DeepCopy()
	if out.Type.IsEmpty() {
		out.Type = runtime.NewVersionedType(ConfigType, Version)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filesystem config: %w", err)
	}
	raw := &runtime.Raw{}
	if err := raw.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return raw, nil
}
