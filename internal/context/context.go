// Package context carries the centrally managed state of one CLI invocation
// inside a [context.Context].
package context

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/brcolow/codeartifact-maven-extension/internal/codeartifact"
	filesystemv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/filesystem/v1alpha1"
	genericv1 "github.com/brcolow/codeartifact-maven-extension/internal/config/generic/v1"
	repositoryv1alpha1 "github.com/brcolow/codeartifact-maven-extension/internal/config/repository/v1alpha1"
)

type ctxKey string

const key ctxKey = "github.com/brcolow/codeartifact-maven-extension/internal/context"

// Context holds pointers to structures that are created once per invocation and shared
// by all commands. Only pointers are stored so lookups stay cheap.
type Context struct {
	mu sync.RWMutex

	// configuration is the loaded configuration file, nil if none was found.
	configuration *genericv1.Config

	// filesystemConfig holds the temp folder and the working directory of the invocation.
	filesystemConfig *filesystemv1alpha1.Config

	// repositoryConfig is the repository configuration merged from the configuration file,
	// the pom and the command line flags.
	repositoryConfig *repositoryv1alpha1.Config

	// clientRegistry owns the single CodeArtifact client of the process.
	// Resolution and pruning share it so credentials are loaded once.
	clientRegistry *codeartifact.ClientRegistry
}

// WithConfiguration stores the configuration file in the context.
func WithConfiguration(ctx context.Context, cfg *genericv1.Config) context.Context {
	ctx, cliCtx := retrieveOrCreate(ctx)
	cliCtx.mu.Lock()
	defer cliCtx.mu.Unlock()
	cliCtx.configuration = cfg
	return ctx
}

// WithFilesystemConfig stores the filesystem configuration in the context.
func WithFilesystemConfig(ctx context.Context, cfg *filesystemv1alpha1.Config) context.Context {
	ctx, cliCtx := retrieveOrCreate(ctx)
	cliCtx.mu.Lock()
	defer cliCtx.mu.Unlock()
	cliCtx.filesystemConfig = cfg
	return ctx
}

// WithRepositoryConfig stores the merged repository configuration in the context.
func WithRepositoryConfig(ctx context.Context, cfg *repositoryv1alpha1.Config) context.Context {
	ctx, cliCtx := retrieveOrCreate(ctx)
	cliCtx.mu.Lock()
	defer cliCtx.mu.Unlock()
	cliCtx.repositoryConfig = cfg
	return ctx
}

// WithClientRegistry stores the client registry in the context.
// A registry that is already present is replaced.
func WithClientRegistry(ctx context.Context, registry *codeartifact.ClientRegistry) context.Context {
	ctx, cliCtx := retrieveOrCreate(ctx)
	cliCtx.mu.Lock()
	defer cliCtx.mu.Unlock()
	cliCtx.clientRegistry = registry
	return ctx
}

// Register makes sure the command context carries a Context.
func Register(cmd *cobra.Command) {
	ctx, _ := retrieveOrCreate(cmd.Context())
	cmd.SetContext(ctx)
}

func (ctx *Context) Configuration() *genericv1.Config {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.configuration
}

func (ctx *Context) FilesystemConfig() *filesystemv1alpha1.Config {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.filesystemConfig
}

func (ctx *Context) RepositoryConfig() *repositoryv1alpha1.Config {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.repositoryConfig
}

func (ctx *Context) ClientRegistry() *codeartifact.ClientRegistry {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.clientRegistry
}

// FromContext returns the Context stored in ctx or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(key).(*Context); ok {
		return v
	}
	return nil
}

// WithContext returns a copy of ctx carrying c.
func WithContext(ctx context.Context, c *Context) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, key, c)
}

func retrieveOrCreate(ctx context.Context) (context.Context, *Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	cliCtx := FromContext(ctx)
	if cliCtx == nil {
		cliCtx = &Context{}
		ctx = WithContext(ctx, cliCtx)
	}
	return ctx, cliCtx
}
