// Package v1alpha1 contains the repository configuration entry of the codeartifact CLI.
package v1alpha1

import (
	"encoding/json"
	"fmt"
	"math"

	"ocm.software/open-component-model/bindings/go/runtime"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
)

const (
	ConfigType = "repository.config.codeartifact"
	Version    = "v1alpha1"
)

var scheme = runtime.NewScheme()

func init() {
	scheme.MustRegisterWithAlias(&Config{},
		runtime.NewVersionedType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)
}

// Config describes the repository to authenticate against.
// Every field is optional; absent fields are taken from a configuration source of lower
// precedence or defaulted by ToConfiguration.
type Config struct {
	Type runtime.Type `json:"type"`

	Domain      string `json:"domain,omitempty"`
	DomainOwner string `json:"domainOwner,omitempty"`
	Repository  string `json:"repository,omitempty"`
	// Profile is the name of the shared AWS configuration profile to load credentials from.
	Profile string `json:"profile,omitempty"`
	// Region overrides the region configured for the profile.
	Region string `json:"region,omitempty"`
	// DurationSeconds is the lifetime of the authorization token.
	// It accepts a number or a numeric string.
	DurationSeconds *DurationSeconds `json:"durationSeconds,omitempty"`
	// Prune enables deletion of Unlisted package versions after the build.
	// It accepts a boolean or the strings "true" and "false".
	Prune *Prune `json:"prune,omitempty"`
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
	if c.DurationSeconds != nil {
		d := *c.DurationSeconds
		out.DurationSeconds = &d
	}
	if c.Prune != nil {
		p := *c.Prune
		out.Prune = &p
	}
	return &out
}

// DurationSeconds is a token lifetime within the accepted range.
type DurationSeconds int

// ParseDurationSeconds parses a textual token lifetime, for example from a flag or a pom property.
func ParseDurationSeconds(value string) (*DurationSeconds, error) {
	seconds, err := codeartifact.ParseDurationSeconds(value)
	if err != nil {
		return nil, err
	}
	d := DurationSeconds(seconds)
	return &d, nil
}

func (d DurationSeconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(d))
}

func (d *DurationSeconds) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		if value != math.Trunc(value) {
			return &codeartifact.ConfigurationError{Field: "durationSeconds", Value: string(b), Reason: "must be a whole number"}
		}
		if err := codeartifact.ValidateDurationSeconds(int(value)); err != nil {
			return err
		}
		*d = DurationSeconds(value)
	case string:
		parsed, err := ParseDurationSeconds(value)
		if err != nil {
			return err
		}
		*d = *parsed
	default:
		return &codeartifact.ConfigurationError{Field: "durationSeconds", Value: string(b), Reason: "must be a number"}
	}
	return nil
}

// Prune is the prune switch.
type Prune bool

// ParsePrune parses a textual prune switch.
func ParsePrune(value string) (*Prune, error) {
	prune, err := codeartifact.ParsePrune(value)
	if err != nil {
		return nil, err
	}
	p := Prune(prune)
	return &p, nil
}

func (p *Prune) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case bool:
		*p = Prune(value)
	case string:
		parsed, err := ParsePrune(value)
		if err != nil {
			return err
		}
		*p = *parsed
	default:
		return &codeartifact.ConfigurationError{Field: "prune", Value: string(b), Reason: "must be a boolean"}
	}
	return nil
}

// LookupConfig decodes and merges all repository entries of cfg in declaration order.
// Each entry is validated against [JSONSchema] first. A nil cfg yields an empty Config.
func LookupConfig(cfg *genericv1.Config) (*Config, error) {
	if cfg == nil {
		return &Config{Type: runtime.NewVersionedType(ConfigType, Version)}, nil
	}
	filtered := genericv1.Filter(genericv1.FlatMap(cfg),
		runtime.NewVersionedType(ConfigType, Version),
		runtime.NewUnversionedType(ConfigType),
	)

	configs := make([]*Config, 0, len(filtered.Configurations))
	for i, entry := range filtered.Configurations {
		if err := ValidateRawJSON(entry.Data); err != nil {
			return nil, &codeartifact.ConfigurationError{
				Field:  "config",
				Value:  entry.Type.String(),
				Reason: fmt.Sprintf("entry %d does not match the schema: %v", i, err),
				Err:    err,
			}
		}
		var config Config
		if err := scheme.Convert(entry, &config); err != nil {
			return nil, fmt.Errorf("failed to decode repository config: %w", err)
		}
		configs = append(configs, &config)
	}
	return Merge(configs...), nil
}

// Merge combines configs so that a field set in a later config overrides earlier ones.
// Nil configs are skipped.
func Merge(configs ...*Config) *Config {
	merged := &Config{Type: runtime.NewVersionedType(ConfigType, Version)}
	for _, config := range configs {
		if config == nil {
			continue
		}
		if config.Domain != "" {
			merged.Domain = config.Domain
		}
		if config.DomainOwner != "" {
			merged.DomainOwner = config.DomainOwner
		}
		if config.Repository != "" {
			merged.Repository = config.Repository
		}
		if config.Profile != "" {
			merged.Profile = config.Profile
		}
		if config.Region != "" {
			merged.Region = config.Region
		}
		if config.DurationSeconds != nil {
			d := *config.DurationSeconds
			merged.DurationSeconds = &d
		}
		if config.Prune != nil {
			p := *config.Prune
			merged.Prune = &p
		}
	}
	return merged
}

// ToConfiguration applies the defaults for absent values and validates the result.
func (c *Config) ToConfiguration() (codeartifact.Configuration, error) {
	cfg := codeartifact.Configuration{
		Domain:          c.Domain,
		DomainOwner:     c.DomainOwner,
		Repository:      c.Repository,
		Profile:         c.Profile,
		DurationSeconds: codeartifact.DefaultDurationSeconds,
	}
	if cfg.Profile == "" {
		cfg.Profile = codeartifact.DefaultProfile
	}
	if c.DurationSeconds != nil {
		cfg.DurationSeconds = int(*c.DurationSeconds)
	}
	if c.Prune != nil {
		cfg.Prune = bool(*c.Prune)
	}
	if err := cfg.Validate(); err != nil {
		return codeartifact.Configuration{}, err
	}
	return cfg, nil
}
