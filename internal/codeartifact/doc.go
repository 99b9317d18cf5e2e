// Package codeartifact resolves authenticated AWS CodeArtifact repository endpoints for a
// build and prunes Unlisted package versions after it.
//
// A single invocation works against exactly one repository and the maven package format:
//
//	registry := codeartifact.NewClientRegistry()
//	descriptor, err := codeartifact.NewResolver(registry).Resolve(ctx, cfg)
//	...
//	report, err := codeartifact.NewPruner(registry).Prune(ctx, cfg)
//
// Both operations reuse the same API handle from the [ClientRegistry]. The registry keeps
// at most one handle per process: the profile passed first wins, and later requests for a
// different profile receive the same handle.
//
// Every service call is synchronous. Errors are returned as [*ConfigurationError],
// [*CredentialResolutionError], [*ServiceCallError] or [*PreconditionFailedError] so callers
// can decide whether the build has to be aborted.
package codeartifact
