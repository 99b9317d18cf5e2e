// Package codeartifacttest provides an in-memory CodeArtifact service for tests.
package codeartifacttest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact/types"

	ca "github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
)

const (
	DefaultEndpoint = "https://acme-111122223333.d.codeartifact.us-east-1.amazonaws.com/maven/maven-repo/"
	DefaultToken    = "eyJ2ZXIiOjEsImlzdSI6MTcwMDAwMDAwMH0.token"
)

// Version is a package version held by the fake.
type Version struct {
	Version string
	Status  types.PackageVersionStatus
}

// Package is a package held by the fake.
type Package struct {
	Namespace string
	Name      string
	Versions  []*Version
}

// Call records one request received by the fake.
type Call struct {
	Operation ca.Operation
	Input     any
}

// Service is an in-memory implementation of [ca.API].
// Listings are split into pages of PageSize entries (0 returns everything at once).
type Service struct {
	mu sync.Mutex

	Endpoint string
	Token    string
	PageSize int
	Packages []*Package

	// Errors makes the given operation fail with the error.
	Errors map[ca.Operation]error
	// BeforeDelete runs before a deletion is applied, e.g. to relist a version concurrently.
	BeforeDelete func(s *Service, input *codeartifact.DeletePackageVersionsInput)

	calls []Call
}

var _ ca.API = (*Service)(nil)

func New() *Service {
	return &Service{
		Endpoint: DefaultEndpoint,
		Token:    DefaultToken,
		Errors:   map[ca.Operation]error{},
	}
}

// AddPackage adds a package with the given versions in listing order.
func (s *Service) AddPackage(namespace, name string, versions ...Version) *Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg := &Package{Namespace: namespace, Name: name}
	for _, v := range versions {
		pkg.Versions = append(pkg.Versions, &Version{Version: v.Version, Status: v.Status})
	}
	s.Packages = append(s.Packages, pkg)
	return pkg
}

// SetStatus changes the status of an existing version.
func (s *Service) SetStatus(namespace, name, version string, status types.PackageVersionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.findVersion(namespace, name, version); v != nil {
		v.Status = status
	}
}

// RemoveVersion drops a version, so that it is unknown to later calls.
func (s *Service) RemoveVersion(namespace, name, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg := s.findPackage(namespace, name)
	if pkg == nil {
		return
	}
	pkg.Versions = slices.DeleteFunc(pkg.Versions, func(v *Version) bool {
		return v.Version == version
	})
}

// Status returns the status of a version or an empty status if it does not exist.
func (s *Service) Status(namespace, name, version string) types.PackageVersionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.findVersion(namespace, name, version); v != nil {
		return v.Status
	}
	return ""
}

// Calls returns all recorded requests in order.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsFor returns the recorded requests of one operation.
func (s *Service) CallsFor(op ca.Operation) []Call {
	var calls []Call
	for _, call := range s.Calls() {
		if call.Operation == op {
			calls = append(calls, call)
		}
	}
	return calls
}

// Registry returns a client registry that always hands out this fake.
func (s *Service) Registry() *ca.ClientRegistry {
	return ca.NewClientRegistry(ca.WithClientFactory(func(context.Context, string) (ca.API, error) {
		return s, nil
	}))
}

func (s *Service) GetRepositoryEndpoint(_ context.Context, params *codeartifact.GetRepositoryEndpointInput, _ ...func(*codeartifact.Options)) (*codeartifact.GetRepositoryEndpointOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(ca.OperationGetRepositoryEndpoint, params); err != nil {
		return nil, err
	}
	return &codeartifact.GetRepositoryEndpointOutput{RepositoryEndpoint: aws.String(s.Endpoint)}, nil
}

func (s *Service) GetAuthorizationToken(_ context.Context, params *codeartifact.GetAuthorizationTokenInput, _ ...func(*codeartifact.Options)) (*codeartifact.GetAuthorizationTokenOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(ca.OperationGetAuthorizationToken, params); err != nil {
		return nil, err
	}
	expiration := time.Now().Add(time.Duration(aws.ToInt64(params.DurationSeconds)) * time.Second)
	return &codeartifact.GetAuthorizationTokenOutput{
		AuthorizationToken: aws.String(s.Token),
		Expiration:         aws.Time(expiration),
	}, nil
}

func (s *Service) ListPackages(_ context.Context, params *codeartifact.ListPackagesInput, _ ...func(*codeartifact.Options)) (*codeartifact.ListPackagesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(ca.OperationListPackages, params); err != nil {
		return nil, err
	}
	start, end, next, err := s.page(params.NextToken, len(s.Packages))
	if err != nil {
		return nil, err
	}
	out := &codeartifact.ListPackagesOutput{NextToken: next}
	for _, pkg := range s.Packages[start:end] {
		out.Packages = append(out.Packages, types.PackageSummary{
			Format:    types.PackageFormatMaven,
			Namespace: optional(pkg.Namespace),
			Package:   aws.String(pkg.Name),
		})
	}
	return out, nil
}

func (s *Service) ListPackageVersions(_ context.Context, params *codeartifact.ListPackageVersionsInput, _ ...func(*codeartifact.Options)) (*codeartifact.ListPackageVersionsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record(ca.OperationListPackageVersions, params); err != nil {
		return nil, err
	}
	pkg := s.findPackage(aws.ToString(params.Namespace), aws.ToString(params.Package))
	if pkg == nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String("package not found")}
	}
	var matching []*Version
	for _, v := range pkg.Versions {
		if params.Status == "" || v.Status == params.Status {
			matching = append(matching, v)
		}
	}
	start, end, next, err := s.page(params.NextToken, len(matching))
	if err != nil {
		return nil, err
	}
	out := &codeartifact.ListPackageVersionsOutput{
		Format:    types.PackageFormatMaven,
		Namespace: params.Namespace,
		Package:   params.Package,
		NextToken: next,
	}
	for _, v := range matching[start:end] {
		out.Versions = append(out.Versions, types.PackageVersionSummary{
			Version: aws.String(v.Version),
			Status:  v.Status,
		})
	}
	return out, nil
}

func (s *Service) DeletePackageVersions(_ context.Context, params *codeartifact.DeletePackageVersionsInput, _ ...func(*codeartifact.Options)) (*codeartifact.DeletePackageVersionsOutput, error) {
	s.mu.Lock()
	if err := s.record(ca.OperationDeletePackageVersions, params); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	hook := s.BeforeDelete
	s.mu.Unlock()

	if hook != nil {
		hook(s, params)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := &codeartifact.DeletePackageVersionsOutput{
		FailedVersions:     map[string]types.PackageVersionError{},
		SuccessfulVersions: map[string]types.SuccessfulPackageVersionInfo{},
	}
	namespace, name := aws.ToString(params.Namespace), aws.ToString(params.Package)
	for _, version := range params.Versions {
		v := s.findVersion(namespace, name, version)
		switch {
		case v == nil:
			out.FailedVersions[version] = types.PackageVersionError{
				ErrorCode:    types.PackageVersionErrorCodeNotFound,
				ErrorMessage: aws.String("version not found"),
			}
		case params.ExpectedStatus != "" && v.Status != params.ExpectedStatus:
			out.FailedVersions[version] = types.PackageVersionError{
				ErrorCode:    types.PackageVersionErrorCodeMismatchedStatus,
				ErrorMessage: aws.String(fmt.Sprintf("expected status %s but was %s", params.ExpectedStatus, v.Status)),
			}
		default:
			v.Status = types.PackageVersionStatusDeleted
			out.SuccessfulVersions[version] = types.SuccessfulPackageVersionInfo{Status: types.PackageVersionStatusDeleted}
		}
	}
	return out, nil
}

func (s *Service) record(op ca.Operation, input any) error {
	s.calls = append(s.calls, Call{Operation: op, Input: input})
	return s.Errors[op]
}

func (s *Service) page(token *string, total int) (start, end int, next *string, err error) {
	if t := aws.ToString(token); t != "" {
		if start, err = strconv.Atoi(t); err != nil || start > total {
			return 0, 0, nil, &types.ValidationException{Message: aws.String("invalid next token")}
		}
	}
	end = total
	if s.PageSize > 0 && start+s.PageSize < total {
		end = start + s.PageSize
		next = aws.String(strconv.Itoa(end))
	}
	return start, end, next, nil
}

func (s *Service) findPackage(namespace, name string) *Package {
	for _, pkg := range s.Packages {
		if pkg.Namespace == namespace && pkg.Name == name {
			return pkg
		}
	}
	return nil
}

func (s *Service) findVersion(namespace, name, version string) *Version {
	pkg := s.findPackage(namespace, name)
	if pkg == nil {
		return nil
	}
	for _, v := range pkg.Versions {
		if v.Version == version {
			return v
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
