// Package v1 contains the generic configuration envelope of the codeartifact CLI.
//
// A configuration file holds a typed list of configuration entries:
//
//	type: generic.config.codeartifact/v1
//	configurations:
//	  - type: repository.config.codeartifact/v1alpha1
//	    domain: acme
//
// Entries stay undecoded until a consumer asks for its own type, so unknown entries
// never fail loading. Envelopes may nest; FlatMap removes the nesting.
package v1

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"ocm.software/open-component-model/bindings/go/runtime"
)

const (
	ConfigType = "generic.config.codeartifact"
	Version    = "v1"
)

var Scheme = runtime.NewScheme()

func init() {
	Scheme.MustRegisterWithAlias(&Config{},
		runtime.NewVersionedType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config holds configuration entries loaded from a configuration file.
type Config struct {
	Type           runtime.Type   `json:"type"`
	Configurations []*runtime.Raw `json:"configurations"`
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
	out := &Config{Type: c.Type}
	if c.Configurations != nil {
		out.Configurations = make([]*runtime.Raw, len(c.Configurations))
		for i, raw := range c.Configurations {
			if raw == nil {
				continue
			}
			out.Configurations[i] = &runtime.Raw{Type: raw.Type, Data: bytes.Clone(raw.Data)}
		}
	}
	return out
}

// Decode reads a YAML or JSON configuration file.
func Decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := Scheme.Decode(r, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if !Scheme.IsRegistered(cfg.Type) {
		return nil, fmt.Errorf("unsupported configuration type %q, expected %s/%s", cfg.Type, ConfigType, Version)
	}
	for i, entry := range cfg.Configurations {
		if entry == nil || entry.Type.IsEmpty() {
			return nil, fmt.Errorf("configuration entry %d has no type", i)
		}
	}
	return cfg, nil
}

// Filter returns a config with only the entries of one of the given types, in their original order.
func Filter(config *Config, types ...runtime.Type) *Config {
	filtered := &Config{Type: config.Type}
	for _, entry := range config.Configurations {
		if slices.Contains(types, entry.GetType()) {
			filtered.Configurations = append(filtered.Configurations, entry)
		}
	}
	return filtered
}

// FlatMap merges configs into one, replacing nested envelopes by their entries.
// The order of entries is preserved, so consumers that merge entries with
// "later wins" semantics see the last declared value.
func FlatMap(configs ...*Config) *Config {
	merged := &Config{
		Type:           runtime.NewVersionedType(ConfigType, Version),
		Configurations: make([]*runtime.Raw, 0),
	}
	for _, config := range configs {
		if config == nil {
			continue
		}
		for _, entry := range config.Configurations {
			var nested Config
			if err := Scheme.Convert(entry, &nested); err != nil {
				merged.Configurations = append(merged.Configurations, entry)
				continue
			}
			merged.Configurations = append(merged.Configurations, FlatMap(&nested).Configurations...)
		}
	}
	return merged
}
