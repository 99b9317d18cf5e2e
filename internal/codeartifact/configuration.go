package codeartifact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinDurationSeconds is the smallest token lifetime accepted by GetAuthorizationToken.
	MinDurationSeconds = 1
	// MaxDurationSeconds is the hard ceiling of GetAuthorizationToken (12 hours).
	MaxDurationSeconds = 43200

	// DefaultDurationSeconds is used by adapters when no duration was configured at all.
	DefaultDurationSeconds = MaxDurationSeconds
	// DefaultProfile is used by adapters when no credential profile was configured at all.
	DefaultProfile = "codeartifact"
)

// Configuration holds everything needed to resolve and prune one repository.
// It is a value type: build it once per invocation and pass it around by value.
type Configuration struct {
	Domain          string
	DomainOwner     string
	Repository      string
	Profile         string
	DurationSeconds int
	Prune           bool
}

// Validate reports all missing or out-of-range fields.
// The returned error is nil or a join of [*ConfigurationError] values.
func (c Configuration) Validate() error {
	var errs []error
	for _, required := range []struct {
		field, value string
	}{
		{"domain", c.Domain},
		{"domainOwner", c.DomainOwner},
		{"repository", c.Repository},
		{"profile", c.Profile},
	} {
		if strings.TrimSpace(required.value) == "" {
			errs = append(errs, &ConfigurationError{Field: required.field, Reason: "must be set"})
		}
	}
	if err := ValidateDurationSeconds(c.DurationSeconds); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WithPrune returns a copy of the configuration with the prune flag set to prune.
func (c Configuration) WithPrune(prune bool) Configuration {
	c.Prune = prune
	return c
}

func (c Configuration) String() string {
	return fmt.Sprintf("Configuration{domain=%q, domainOwner=%q, repository=%q, profile=%q, durationSeconds=%d, prune=%t}",
		c.Domain, c.DomainOwner, c.Repository, c.Profile, c.DurationSeconds, c.Prune)
}

// ValidateDurationSeconds checks the token lifetime against [MinDurationSeconds, MaxDurationSeconds].
// Values outside the range are rejected, never clamped.
func ValidateDurationSeconds(seconds int) error {
	if seconds < MinDurationSeconds || seconds > MaxDurationSeconds {
		return &ConfigurationError{
			Field:  "durationSeconds",
			Value:  strconv.Itoa(seconds),
			Reason: fmt.Sprintf("must be greater than %d and less than or equal to %d", MinDurationSeconds-1, MaxDurationSeconds),
		}
	}
	return nil
}

// ParseDurationSeconds parses a token lifetime given as text and validates its range.
func ParseDurationSeconds(value string) (int, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &ConfigurationError{Field: "durationSeconds", Value: value, Reason: "must be a number", Err: err}
	}
	if err := ValidateDurationSeconds(seconds); err != nil {
		return 0, err
	}
	return seconds, nil
}

// ParsePrune parses the prune switch given as text.
func ParsePrune(value string) (bool, error) {
	prune, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, &ConfigurationError{Field: "prune", Value: value, Reason: "must be a boolean", Err: err}
	}
	return prune, nil
}
