package codeartifact

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aws/smithy-go"
)

var (
	// ErrPreconditionFailed is matched by [*PreconditionFailedError] via errors.Is.
	ErrPreconditionFailed = errors.New("expected status precondition failed")
	// ErrVersionsRejected is matched by [*VersionsRejectedError] via errors.Is.
	ErrVersionsRejected = errors.New("versions rejected by the service")
)

// ConfigurationError is returned when a configuration value is absent, malformed or out of range.
// It is always raised before any service call is attempted.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid configuration %q", e.Field)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CredentialResolutionError is returned when the credentials of a profile cannot be loaded locally.
type CredentialResolutionError struct {
	Profile string
	Err     error
}

func (e *CredentialResolutionError) Error() string {
	return fmt.Sprintf("could not load credentials for profile %q: %v", e.Profile, e.Err)
}

func (e *CredentialResolutionError) Unwrap() error { return e.Err }

// Operation names a CodeArtifact API operation.
type Operation string

const (
	OperationGetRepositoryEndpoint Operation = "GetRepositoryEndpoint"
	OperationGetAuthorizationToken Operation = "GetAuthorizationToken"
	OperationListPackages          Operation = "ListPackages"
	OperationListPackageVersions   Operation = "ListPackageVersions"
	OperationDeletePackageVersions Operation = "DeletePackageVersions"
)

// ServiceCallError wraps a failed CodeArtifact call with the operation it belongs to.
// The underlying SDK error is available through errors.As / errors.Unwrap.
type ServiceCallError struct {
	Operation Operation
	Err       error
}

func (e *ServiceCallError) Error() string {
	return fmt.Sprintf("codeartifact %s failed: %v", e.Operation, e.Err)
}

func (e *ServiceCallError) Unwrap() error { return e.Err }

// APIErrorCode returns the service error code (for example AccessDeniedException),
// or an empty string if the failure did not come from the service.
func (e *ServiceCallError) APIErrorCode() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// PreconditionFailedError is returned when a guarded deletion was rejected for at least one version
// with MISMATCHED_STATUS, because its status changed after it was listed.
type PreconditionFailedError struct {
	Package PackageIdentity
	// Failures maps every rejected version to the reason given by the service.
	Failures map[string]string
}

func (e *PreconditionFailedError) Error() string {
	return rejectionMessage(e.Package, e.Failures, ErrPreconditionFailed)
}

func (e *PreconditionFailedError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// VersionsRejectedError is returned when the service rejected versions of a deletion for reasons
// other than a status mismatch, for example NOT_FOUND or SKIPPED.
type VersionsRejectedError struct {
	Package  PackageIdentity
	Failures map[string]string
}

func (e *VersionsRejectedError) Error() string {
	return rejectionMessage(e.Package, e.Failures, ErrVersionsRejected)
}

func (e *VersionsRejectedError) Is(target error) bool {
	return target == ErrVersionsRejected
}

func rejectionMessage(pkg PackageIdentity, failures map[string]string, cause error) string {
	versions := slices.Sorted(maps.Keys(failures))
	reasons := make([]string, 0, len(versions))
	for _, version := range versions {
		reasons = append(reasons, fmt.Sprintf("%s: %s", version, failures[version]))
	}
	return fmt.Sprintf("deletion of %s rejected for %d version(s) [%s]: %v",
		pkg, len(versions), strings.Join(reasons, ", "), cause)
}
