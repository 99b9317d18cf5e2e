package codeartifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact"
	"github.com/aws/aws-sdk-go-v2/service/codeartifact/types"
	"github.com/gobwas/glob"
	slogcontext "github.com/veqryn/slog-context"
)

// PackageIdentity identifies a package inside a repository of the maven format.
// For maven the namespace is the group id and the name the artifact id.
type PackageIdentity struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

func (p PackageIdentity) String() string {
	if p.Namespace == "" {
		return p.Name
	}
	return p.Namespace + ":" + p.Name
}

// PackageVersionRecord is a published version of a package together with its status.
type PackageVersionRecord struct {
	Version string                     `json:"version"`
	Status  types.PackageVersionStatus `json:"status"`
}

// DeleteOutcome is the result of pruning a single package.
type DeleteOutcome string

const (
	// DeleteOutcomeSkipped means the package had no Unlisted versions and no deletion was requested.
	DeleteOutcomeSkipped DeleteOutcome = "skipped"
	// DeleteOutcomePlanned means the versions would have been deleted but the run was a dry run.
	DeleteOutcomePlanned DeleteOutcome = "planned"
	// DeleteOutcomeDeleted means all Unlisted versions were deleted.
	DeleteOutcomeDeleted DeleteOutcome = "deleted"
	// DeleteOutcomePreconditionFailed means the service rejected at least one version because its
	// status was no longer Unlisted.
	DeleteOutcomePreconditionFailed DeleteOutcome = "precondition-failed"
	// DeleteOutcomeRejected means the service rejected versions for another reason,
	// for example because they no longer existed.
	DeleteOutcomeRejected DeleteOutcome = "rejected"
	// DeleteOutcomeServiceError means listing or deleting failed for another reason.
	DeleteOutcomeServiceError DeleteOutcome = "service-error"
)

// PackagePruneResult describes what happened to one package.
type PackagePruneResult struct {
	Package  PackageIdentity        `json:"package"`
	Versions []PackageVersionRecord `json:"versions,omitempty"`
	Deleted  []string               `json:"deleted,omitempty"`
	Outcome  DeleteOutcome          `json:"outcome"`
}

// PruneReport lists every processed package in the order returned by the service.
// After a failure it contains the packages processed up to and including the failing one.
type PruneReport struct {
	DryRun   bool                 `json:"dryRun"`
	Packages []PackagePruneResult `json:"packages"`
}

// DeletedVersions counts the versions deleted in this run.
func (r *PruneReport) DeletedVersions() int {
	var n int
	for _, pkg := range r.Packages {
		n += len(pkg.Deleted)
	}
	return n
}

// Pruner deletes Unlisted package versions from a repository.
type Pruner struct {
	clients *ClientRegistry
	dryRun  bool
	filters []glob.Glob
}

// PruneOption configures a Pruner.
type PruneOption func(*Pruner) error

// WithDryRun lists the versions that would be deleted without deleting them.
func WithDryRun(dryRun bool) PruneOption {
	return func(p *Pruner) error {
		p.dryRun = dryRun
		return nil
	}
}

// WithPackageFilter limits pruning to packages matching at least one of the glob patterns.
// A pattern is matched against "namespace:name" and against the bare name.
func WithPackageFilter(patterns ...string) PruneOption {
	return func(p *Pruner) error {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern, ':', '.')
			if err != nil {
				return &ConfigurationError{Field: "package", Value: pattern, Reason: "must be a valid glob pattern", Err: err}
			}
			p.filters = append(p.filters, g)
		}
		return nil
	}
}

func NewPruner(clients *ClientRegistry, opts ...PruneOption) (*Pruner, error) {
	p := &Pruner{clients: clients}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Prune deletes all Unlisted versions of all packages in the configured repository.
//
// Nothing happens, and no service call is made, unless cfg.Prune is set.
// All package pages are consumed before the first package is processed. Each package with
// Unlisted versions gets one deletion request guarded by the expected status Unlisted, so a
// version that was relisted in the meantime is rejected instead of deleted.
// The first error aborts the run; packages already processed stay pruned.
//
// The service accepts at most 100 versions per DeletePackageVersions request. The batch is not
// split, so a package with more Unlisted versions fails with a ValidationException and aborts the run.
func (p *Pruner) Prune(ctx context.Context, cfg Configuration) (*PruneReport, error) {
	report := &PruneReport{DryRun: p.dryRun, Packages: []PackagePruneResult{}}
	if !cfg.Prune {
		slogcontext.Debug(ctx, "pruning is disabled")
		return report, nil
	}

	client, err := p.clients.GetOrCreate(ctx, cfg.Profile)
	if err != nil {
		return report, err
	}

	packages, err := listPackages(ctx, client, cfg)
	if err != nil {
		return report, err
	}
	slogcontext.Info(ctx, "pruning codeartifact repository of unlisted versions",
		slog.Int("packages", len(packages)), slog.Bool("dryRun", p.dryRun))

	for _, pkg := range packages {
		if !p.matches(pkg) {
			slogcontext.Debug(ctx, "package excluded by filter", slog.String("package", pkg.String()))
			continue
		}

		result := PackagePruneResult{Package: pkg}
		result.Versions, err = listUnlistedVersions(ctx, client, cfg, pkg)
		if err != nil {
			result.Outcome = DeleteOutcomeServiceError
			report.Packages = append(report.Packages, result)
			return report, err
		}

		switch {
		case len(result.Versions) == 0:
			result.Outcome = DeleteOutcomeSkipped
		case p.dryRun:
			result.Outcome = DeleteOutcomePlanned
			slogcontext.Info(ctx, "would prune unlisted versions", slog.String("package", pkg.String()), slog.Int("versions", len(result.Versions)))
		default:
			slogcontext.Info(ctx, "pruning unlisted versions", slog.String("package", pkg.String()), slog.Int("versions", len(result.Versions)))
			result.Deleted, err = deleteUnlistedVersions(ctx, client, cfg, pkg, result.Versions)
			if err != nil {
				switch {
				case errors.Is(err, ErrPreconditionFailed):
					result.Outcome = DeleteOutcomePreconditionFailed
				case errors.Is(err, ErrVersionsRejected):
					result.Outcome = DeleteOutcomeRejected
				default:
					result.Outcome = DeleteOutcomeServiceError
				}
				report.Packages = append(report.Packages, result)
				return report, err
			}
			result.Outcome = DeleteOutcomeDeleted
		}
		report.Packages = append(report.Packages, result)
	}

	return report, nil
}

func (p *Pruner) matches(pkg PackageIdentity) bool {
	if len(p.filters) == 0 {
		return true
	}
	for _, g := range p.filters {
		if g.Match(pkg.String()) || g.Match(pkg.Name) {
			return true
		}
	}
	return false
}

func listPackages(ctx context.Context, client API, cfg Configuration) ([]PackageIdentity, error) {
	paginator := codeartifact.NewListPackagesPaginator(client, &codeartifact.ListPackagesInput{
		Domain:      aws.String(cfg.Domain),
		DomainOwner: aws.String(cfg.DomainOwner),
		Repository:  aws.String(cfg.Repository),
		Format:      PackageFormat,
	})

	var packages []PackageIdentity
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ServiceCallError{Operation: OperationListPackages, Err: err}
		}
		for _, summary := range page.Packages {
			packages = append(packages, PackageIdentity{
				Namespace: aws.ToString(summary.Namespace),
				Name:      aws.ToString(summary.Package),
			})
		}
	}
	return packages, nil
}

func listUnlistedVersions(ctx context.Context, client API, cfg Configuration, pkg PackageIdentity) ([]PackageVersionRecord, error) {
	paginator := codeartifact.NewListPackageVersionsPaginator(client, &codeartifact.ListPackageVersionsInput{
		Domain:      aws.String(cfg.Domain),
		DomainOwner: aws.String(cfg.DomainOwner),
		Repository:  aws.String(cfg.Repository),
		Format:      PackageFormat,
		Namespace:   optionalString(pkg.Namespace),
		Package:     aws.String(pkg.Name),
		Status:      types.PackageVersionStatusUnlisted,
	})

	var versions []PackageVersionRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ServiceCallError{Operation: OperationListPackageVersions, Err: fmt.Errorf("package %s: %w", pkg, err)}
		}
		for _, summary := range page.Versions {
			versions = append(versions, PackageVersionRecord{
				Version: aws.ToString(summary.Version),
				Status:  summary.Status,
			})
		}
	}
	return versions, nil
}

func deleteUnlistedVersions(ctx context.Context, client API, cfg Configuration, pkg PackageIdentity, records []PackageVersionRecord) ([]string, error) {
	versions := make([]string, 0, len(records))
	for _, record := range records {
		versions = append(versions, record.Version)
	}

	out, err := client.DeletePackageVersions(ctx, &codeartifact.DeletePackageVersionsInput{
		Domain:         aws.String(cfg.Domain),
		DomainOwner:    aws.String(cfg.DomainOwner),
		Repository:     aws.String(cfg.Repository),
		Format:         PackageFormat,
		Namespace:      optionalString(pkg.Namespace),
		Package:        aws.String(pkg.Name),
		Versions:       versions,
		ExpectedStatus: types.PackageVersionStatusUnlisted,
	})
	if err != nil {
		return nil, &ServiceCallError{Operation: OperationDeletePackageVersions, Err: fmt.Errorf("package %s: %w", pkg, err)}
	}

	deleted := make([]string, 0, len(out.SuccessfulVersions))
	for _, version := range versions {
		if _, ok := out.SuccessfulVersions[version]; ok {
			deleted = append(deleted, version)
		}
	}

	if len(out.FailedVersions) > 0 {
		failures := make(map[string]string, len(out.FailedVersions))
		mismatched := false
		for version, failure := range out.FailedVersions {
			failures[version] = fmt.Sprintf("%s: %s", failure.ErrorCode, aws.ToString(failure.ErrorMessage))
			if failure.ErrorCode == types.PackageVersionErrorCodeMismatchedStatus {
				mismatched = true
			}
		}
		if mismatched {
			return deleted, &PreconditionFailedError{Package: pkg, Failures: failures}
		}
		return deleted, &VersionsRejectedError{Package: pkg, Failures: failures}
	}

	return deleted, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
