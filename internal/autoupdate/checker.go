// Package autoupdate provides version checking functionality for dependency updates.
package autoupdate

import (
	"context"
	"errors"
	"fmt"

	"github.com/obentoo/depbump/internal/common/logger"
)

// Error variables for checker errors
var (
	// ErrRunHadFailures is returned by CheckAll when at least one dependency failed
	ErrRunHadFailures = errors.New("one or more dependencies failed")
)

// Checker handles version checking operations for the tracked dependencies.
// It coordinates between the dependency table, the release fetcher and the
// definitions file.
type Checker struct {
	// dependencies are processed in order
	dependencies []Dependency
	// definitions holds the definitions file being patched
	definitions *DefinitionsFile
	// fetcher retrieves release feeds
	fetcher *Fetcher
	// failFast stops the run at the first failing dependency
	failFast bool
	// dryRun patches in memory only
	dryRun bool
	// allowDowngrade writes feed versions even when older than the current one
	allowDowngrade bool
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker) error

// WithDependencies replaces the built-in dependency table
func WithDependencies(deps []Dependency) CheckerOption {
	return func(c *Checker) error {
		if len(deps) == 0 {
			return ErrNoDependencies
		}
		c.dependencies = deps
		return nil
	}
}

// WithFetcher sets a custom release fetcher for the checker
func WithFetcher(fetcher *Fetcher) CheckerOption {
	return func(c *Checker) error {
		c.fetcher = fetcher
		return nil
	}
}

// WithFailFast aborts the run at the first failing dependency
func WithFailFast(failFast bool) CheckerOption {
	return func(c *Checker) error {
		c.failFast = failFast
		return nil
	}
}

// WithDryRun keeps all changes in memory
func WithDryRun(dryRun bool) CheckerOption {
	return func(c *Checker) error {
		c.dryRun = dryRun
		return nil
	}
}

// WithDowngrades controls whether an older feed version may replace the current one
func WithDowngrades(allow bool) CheckerOption {
	return func(c *Checker) error {
		c.allowDowngrade = allow
		return nil
	}
}

// NewChecker creates a checker for the definitions file at definitionsPath.
// The file is loaded immediately; a missing file is an error.
func NewChecker(definitionsPath string, opts ...CheckerOption) (*Checker, error) {
	checker := &Checker{
		dependencies:   DefaultDependencies(),
		allowDowngrade: true,
	}

	for _, opt := range opts {
		if err := opt(checker); err != nil {
			return nil, fmt.Errorf("failed to apply checker option: %w", err)
		}
	}

	definitions, err := LoadDefinitions(definitionsPath)
	if err != nil {
		return nil, err
	}
	checker.definitions = definitions

	if checker.fetcher == nil {
		checker.fetcher = NewFetcher(nil, nil)
	}

	return checker, nil
}

// CheckDependency checks a single dependency and patches the definitions
// file when a new version is found. Failures are reported in the result.
func (c *Checker) CheckDependency(ctx context.Context, dep Dependency) *Result {
	result := &Result{
		Dependency: dep,
		FeedURL:    dep.FeedURL(),
	}
	logger.Info("%s: fetching %s", dep.Name, result.FeedURL)

	tag, err := c.latestTag(ctx, result)
	if err != nil {
		return result.fail(err)
	}
	result.Tag = tag
	result.Version = Normalize(dep, tag)
	logger.Info("%s: tag=%s version=%s", dep.Name, tag, result.Version)

	if !c.allowDowngrade && IsValidVersion(result.Version) {
		if current, ok := c.definitions.CurrentVersion(dep.Name); ok && CompareVersions(result.Version, current) < 0 {
			result.PreviousVersion = current
			result.Outcome = OutcomeDowngradeSkipped
			logger.Warn("%s: feed version %s is older than %s, skipping", dep.Name, result.Version, current)
			return result
		}
	}

	patch, err := c.definitions.Apply(dep.Name, result.Version)
	if err != nil {
		return result.fail(err)
	}
	result.Outcome = patch.Outcome
	result.PreviousVersion = patch.PreviousVersion

	if patch.Changed() && !c.dryRun {
		if _, err := c.definitions.Save(); err != nil {
			return result.fail(err)
		}
	}

	logger.Info("%s: %s", dep.Name, result.Outcome)
	return result
}

// latestTag returns the newest release tag of the result's dependency,
// recording the release link for feed-based dependencies.
func (c *Checker) latestTag(ctx context.Context, result *Result) (string, error) {
	dep := result.Dependency
	if dep.ScrapesPage() {
		return c.fetcher.Fetch(ctx, result.FeedURL, &HTMLParser{Selector: dep.Selector, XPath: dep.XPath})
	}

	link, err := c.fetcher.LatestLink(ctx, result.FeedURL)
	if err != nil {
		return "", err
	}
	result.Link = link
	logger.Info("%s: newest link %s", dep.Name, link)

	return TagFromLink(link)
}

// CheckAll checks every dependency in order and returns the run report.
// By default a failing dependency is recorded and the run continues; the
// returned error then wraps ErrRunHadFailures. With fail-fast the run stops
// at the first failure and returns the partial report with that error.
func (c *Checker) CheckAll(ctx context.Context) (*Report, error) {
	report := &Report{
		Definitions: c.definitions.Path(),
		DryRun:      c.dryRun,
		Results:     make([]Result, 0, len(c.dependencies)),
	}

	for _, dep := range c.dependencies {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := c.CheckDependency(ctx, dep)
		report.Results = append(report.Results, *result)

		if result.Err != nil {
			logger.Error("%v", result.Err)
			if c.failFast {
				return report, result.Err
			}
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrRunHadFailures, len(failed), len(c.dependencies))
	}
	return report, nil
}

// Dependencies returns the dependency table in processing order.
func (c *Checker) Dependencies() []Dependency {
	return c.dependencies
}

// Definitions returns the definitions file.
func (c *Checker) Definitions() *DefinitionsFile {
	return c.definitions
}
