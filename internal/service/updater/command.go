package updater

import (
	"context"
	"fmt"
	"net/http"

	"github.com/oshokin/altsource-updater/internal/api/github"
	"github.com/oshokin/altsource-updater/internal/config"
	"github.com/oshokin/altsource-updater/internal/domain/source"
	"github.com/oshokin/altsource-updater/internal/logger"
	manifestrepo "github.com/oshokin/altsource-updater/internal/repository/manifest"
)

// Exit codes reported by the CLI.
const (
	// ExitUpdated means the manifest was (or in dry-run would be) rewritten.
	ExitUpdated = 0
	// ExitNoUpdates means nothing was written.
	ExitNoUpdates = 1
	// ExitFetchFailed means nothing was written and at least one source failed.
	// It is only used when detailed exit codes are requested.
	ExitFetchFailed = 2
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional settings YAML file; empty means built-in sources.
	ConfigPath string
	// ManifestPath overrides the manifest location from the settings.
	ManifestPath string
	// DryRun reconciles in memory without writing the manifest.
	DryRun bool
	// HTTPClient replaces the default HTTP client used for API calls.
	HTTPClient *http.Client
}

// Result summarizes a run.
type Result struct {
	// Updated lists sources whose entry was added or changed.
	Updated []string
	// Current lists sources already at the fetched version.
	Current []string
	// Failed lists sources whose release could not be fetched.
	Failed []string
	// Written is true when the manifest file was rewritten.
	Written bool
}

// Changed reports whether any entry changed.
func (r *Result) Changed() bool {
	return r != nil && len(r.Updated) > 0
}

// ExitCode maps the result to a process exit status.
// Without detailed codes, "nothing to do" and "all fetches failed" both yield ExitNoUpdates.
func (r *Result) ExitCode(detailed bool) int {
	switch {
	case r.Changed():
		return ExitUpdated
	case detailed && r != nil && len(r.Failed) > 0:
		return ExitFetchFailed
	default:
		return ExitNoUpdates
	}
}

// runner holds the collaborators of a single synchronization pass.
type runner struct {
	// api fetches releases from the upstream host.
	api releaseFetcher
	// repo loads and saves the manifest.
	repo manifestrepo.Repository
	// manifestPath is only used for log output.
	manifestPath string
	// dryRun skips the final save.
	dryRun bool
}

// Run executes one synchronization pass and is the public entry point for the CLI.
// Fetch failures are logged and skipped; manifest load or save failures are returned.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "altsource-updater")

	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.ManifestPath != "" {
		cfg.ManifestPath = opts.ManifestPath
	}

	sources, err := cfg.DomainSources()
	if err != nil {
		return nil, err
	}

	client, err := github.NewClient(
		cfg.APIBaseURL,
		github.WithCallTimeout(cfg.Timeout),
		github.WithHTTPClient(opts.HTTPClient),
	)
	if err != nil {
		return nil, err
	}

	repo := manifestrepo.NewFileRepository(cfg.ManifestPath)

	r := &runner{
		api:          client,
		repo:         repo,
		manifestPath: repo.Path(),
		dryRun:       opts.DryRun,
	}

	return r.run(ctx, sources)
}

// run processes the sources strictly in order and persists the manifest at most once.
func (r *runner) run(ctx context.Context, sources []source.Source) (*Result, error) {
	m, err := r.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	result := new(Result)

	for _, src := range sources {
		srcCtx := logger.WithKV(ctx, "app", src.Name)

		logger.DebugKV(srcCtx, "Fetching latest release", "repository", src.Repository, "asset", src.Asset.String())

		release, fetchErr := fetchRelease(srcCtx, r.api, src)
		if fetchErr != nil {
			logger.ErrorKV(srcCtx, "Failed to fetch release",
				"repository", src.Repository,
				"reason", failureReason(fetchErr),
				"error", fetchErr)

			result.Failed = append(result.Failed, src.Name)

			continue
		}

		if reconcile(srcCtx, m, src, release) {
			result.Updated = append(result.Updated, src.Name)
		} else {
			result.Current = append(result.Current, src.Name)
		}
	}

	if !result.Changed() {
		logger.InfoKV(ctx, "No updates needed", "current", len(result.Current), "failed", len(result.Failed))
		return result, nil
	}

	if r.dryRun {
		logger.InfoKV(ctx, "Dry run, manifest left untouched", "path", r.manifestPath, "updated", result.Updated)
		return result, nil
	}

	if err = r.repo.Save(ctx, m); err != nil {
		return result, fmt.Errorf("save manifest: %w", err)
	}

	result.Written = true

	logger.InfoKV(ctx, "Updates saved", "path", r.manifestPath, "updated", result.Updated)

	return result, nil
}
