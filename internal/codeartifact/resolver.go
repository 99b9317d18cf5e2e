package codeartifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact/types"
	slogcontext "github.com/veqryn/slog-context"
)

// AuthScheme is the user name CodeArtifact expects next to an authorization token.
const AuthScheme = "aws"

// PackageFormat is the only package format handled.
const PackageFormat = types.PackageFormatMaven

// RepositoryDescriptor is an authenticated repository endpoint.
//
// The token expires DurationSeconds after it was issued, but no expiry is tracked here:
// use a descriptor for one build invocation and resolve again for the next one.
type RepositoryDescriptor struct {
	EndpointURL string
	AuthScheme  string
	Token       string
	IssuedFor   Configuration
}

func (d *RepositoryDescriptor) String() string {
	return fmt.Sprintf("RepositoryDescriptor{endpoint=%q, scheme=%q, token=<redacted>}", d.EndpointURL, d.AuthScheme)
}

// Resolver resolves repository endpoints and issues authorization tokens.
type Resolver struct {
	clients *ClientRegistry
}

func NewResolver(clients *ClientRegistry) *Resolver {
	return &Resolver{clients: clients}
}

// Resolve looks up the repository endpoint and then issues a token for the repository's domain.
//
// Exactly two service calls are made, in that order. The endpoint lookup only needs describe
// permissions, while the token additionally requires codeartifact:GetAuthorizationToken and
// sts:GetServiceBearerToken, so a caller lacking the latter fails at the second step.
// The duration is validated before any call is made.
func (r *Resolver) Resolve(ctx context.Context, cfg Configuration) (*RepositoryDescriptor, error) {
	if err := ValidateDurationSeconds(cfg.DurationSeconds); err != nil {
		return nil, err
	}

	client, err := r.clients.GetOrCreate(ctx, cfg.Profile)
	if err != nil {
		return nil, err
	}

	endpoint, err := client.GetRepositoryEndpoint(ctx, &codeartifact.GetRepositoryEndpointInput{
		Domain:      aws.String(cfg.Domain),
		DomainOwner: aws.String(cfg.DomainOwner),
		Repository:  aws.String(cfg.Repository),
		Format:      PackageFormat,
	})
	if err != nil {
		return nil, &ServiceCallError{Operation: OperationGetRepositoryEndpoint, Err: err}
	}
	endpointURL := aws.ToString(endpoint.RepositoryEndpoint)
	if endpointURL == "" {
		return nil, &ServiceCallError{Operation: OperationGetRepositoryEndpoint, Err: errors.New("empty repository endpoint in response")}
	}
	slogcontext.Info(ctx, "resolved codeartifact repository endpoint", slog.String("endpoint", endpointURL))

	token, err := client.GetAuthorizationToken(ctx, &codeartifact.GetAuthorizationTokenInput{
		Domain:          aws.String(cfg.Domain),
		DomainOwner:     aws.String(cfg.DomainOwner),
		DurationSeconds: aws.Int64(int64(cfg.DurationSeconds)),
	})
	if err != nil {
		return nil, &ServiceCallError{Operation: OperationGetAuthorizationToken, Err: err}
	}
	authToken := aws.ToString(token.AuthorizationToken)
	if authToken == "" {
		return nil, &ServiceCallError{Operation: OperationGetAuthorizationToken, Err: errors.New("empty authorization token in response")}
	}
	slogcontext.Info(ctx, "fetched codeartifact authorization token", slog.Int("durationSeconds", cfg.DurationSeconds))

	return &RepositoryDescriptor{
		EndpointURL: endpointURL,
		AuthScheme:  AuthScheme,
		Token:       authToken,
		IssuedFor:   cfg,
	}, nil
}
