package codeartifact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact"
	slogcontext "github.com/veqryn/slog-context"
)

// API is the subset of the CodeArtifact client used by the resolver and the pruner.
// The method set mirrors [codeartifact.Client] so SDK paginators accept any implementation.
type API interface {
	GetRepositoryEndpoint(ctx context.Context, params *codeartifact.GetRepositoryEndpointInput, optFns ...func(*codeartifact.Options)) (*codeartifact.GetRepositoryEndpointOutput, error)
	GetAuthorizationToken(ctx context.Context, params *codeartifact.GetAuthorizationTokenInput, optFns ...func(*codeartifact.Options)) (*codeartifact.GetAuthorizationTokenOutput, error)
	DeletePackageVersions(ctx context.Context, params *codeartifact.DeletePackageVersionsInput, optFns ...func(*codeartifact.Options)) (*codeartifact.DeletePackageVersionsOutput, error)
	codeartifact.ListPackagesAPIClient
	codeartifact.ListPackageVersionsAPIClient
}

var _ API = (*codeartifact.Client)(nil)

// ClientFactory creates an API handle for a credential profile.
// It must not perform network calls; credentials are only exchanged on the first request.
type ClientFactory func(ctx context.Context, profile string) (API, error)

// NewSDKClientFactory returns the default factory. It loads the shared AWS configuration of the
// given profile and builds a CodeArtifact client from it. An empty region falls back to the
// region configured for the profile or the environment.
func NewSDKClientFactory(region string) ClientFactory {
	return func(ctx context.Context, profile string) (API, error) {
		opts := []func(*config.LoadOptions) error{
			config.WithSharedConfigProfile(profile),
		}
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return codeartifact.NewFromConfig(cfg), nil
	}
}

// ClientRegistry holds the single API handle of a process.
//
// The first call to GetOrCreate decides the profile. Every later call returns that same handle,
// even when a different profile is requested. A process only ever works with one profile,
// so the mismatch is logged instead of creating a second client.
type ClientRegistry struct {
	mu      sync.Mutex
	factory ClientFactory
	region  string

	profile string
	client  API
}

// RegistryOption configures a ClientRegistry.
type RegistryOption func(*ClientRegistry)

// WithClientFactory replaces the SDK based factory, mostly for tests.
func WithClientFactory(factory ClientFactory) RegistryOption {
	return func(r *ClientRegistry) {
		r.factory = factory
	}
}

// WithRegion sets the AWS region used by the default factory.
func WithRegion(region string) RegistryOption {
	return func(r *ClientRegistry) {
		r.region = region
	}
}

func NewClientRegistry(opts ...RegistryOption) *ClientRegistry {
	r := &ClientRegistry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.factory == nil {
		r.factory = NewSDKClientFactory(r.region)
	}
	return r
}

// GetOrCreate returns the cached handle or creates it for profile on first use.
// A failure to create the handle is not cached, so a later call will try again.
func (r *ClientRegistry) GetOrCreate(ctx context.Context, profile string) (API, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		if profile != r.profile {
			slogcontext.Warn(ctx, "reusing codeartifact client created for another profile",
				slog.String("requested", profile), slog.String("profile", r.profile))
		}
		return r.client, nil
	}

	client, err := r.factory(ctx, profile)
	if err != nil {
		return nil, &CredentialResolutionError{Profile: profile, Err: err}
	}
	if client == nil {
		return nil, &CredentialResolutionError{Profile: profile, Err: fmt.Errorf("no client returned")}
	}
	slogcontext.Debug(ctx, "created codeartifact client", slog.String("profile", profile))

	r.profile = profile
	r.client = client
	return client, nil
}

// Profile returns the profile the cached handle was created for, or an empty string.
func (r *ClientRegistry) Profile() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile
}
