package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obentoo/depbump/internal/autoupdate"
	"github.com/obentoo/depbump/internal/common/logger"
	"github.com/obentoo/depbump/internal/common/output"
	"github.com/obentoo/depbump/internal/common/version"
	"github.com/spf13/cobra"
)

var (
	// updateDryRun patches in memory only
	updateDryRun bool
	// updateFailFast stops at the first failing dependency
	updateFailFast bool
	// updateNoDowngrade refuses feed versions older than the current one
	updateNoDowngrade bool
	// updateReport is an optional YAML report path
	updateReport string
	// updateTimeout is the per-request timeout
	updateTimeout time.Duration
	// updateRetries is the number of retries per feed request
	updateRetries int
)

func init() {
	defaults := autoupdate.DefaultRetryConfig()

	rootCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Check for updates without writing any file")
	rootCmd.Flags().BoolVar(&updateFailFast, "fail-fast", false, "Stop at the first dependency that fails")
	rootCmd.Flags().BoolVar(&updateNoDowngrade, "no-downgrade", false, "Skip feed versions older than the current one")
	rootCmd.Flags().StringVar(&updateReport, "report", "", "Write a YAML run report to this path")
	rootCmd.Flags().DurationVar(&updateTimeout, "timeout", defaults.Timeout, "Timeout for each feed request")
	rootCmd.Flags().IntVar(&updateRetries, "retries", defaults.MaxRetries, "Retries for each feed request")
}

// updateOptions carries everything a run needs, decoupled from flag globals
type updateOptions struct {
	definitions  string
	dependencies []autoupdate.Dependency
	fetcher      *autoupdate.Fetcher
	dryRun       bool
	failFast     bool
	noDowngrade  bool
	reportPath   string
}

// executeUpdate runs the checker and exports its results. The report is
// returned even when the run had failures. With fail-fast, a failed run
// leaves GITHUB_ENV untouched.
func executeUpdate(ctx context.Context, opts updateOptions) (*autoupdate.Report, error) {
	checker, err := autoupdate.NewChecker(opts.definitions,
		autoupdate.WithDependencies(opts.dependencies),
		autoupdate.WithFetcher(opts.fetcher),
		autoupdate.WithFailFast(opts.failFast),
		autoupdate.WithDryRun(opts.dryRun),
		autoupdate.WithDowngrades(!opts.noDowngrade),
	)
	if err != nil {
		return nil, err
	}

	report, runErr := checker.CheckAll(ctx)

	if opts.reportPath != "" {
		if err := autoupdate.WriteReport(opts.reportPath, report); err != nil {
			logger.Error("%v", err)
		}
	}

	// An aborted fail-fast run exports no partial commit message
	aborted := opts.failFast && runErr != nil
	if !opts.dryRun && !aborted {
		exported, err := report.ExportCommitMessage()
		if err != nil {
			return report, err
		}
		if exported {
			logger.Debug("%s written to %s", autoupdate.CommitMessageVar, os.Getenv(autoupdate.GitHubEnvVar))
		}
	}

	return report, runErr
}

func runUpdate(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, path, err := loadDependencies(cmd)
	if err != nil {
		logger.Error("loading dependencies: %v", err)
		os.Exit(1)
	}

	retry := autoupdate.DefaultRetryConfig()
	retry.Timeout = updateTimeout
	retry.MaxRetries = updateRetries
	client := autoupdate.NewRetryableHTTPClientWithConfig(retry)
	client.SetUserAgent(version.UserAgent())

	report, err := executeUpdate(ctx, updateOptions{
		definitions:  path,
		dependencies: cfg.Dependencies,
		fetcher:      autoupdate.NewFetcher(client, nil),
		dryRun:       updateDryRun,
		failFast:     updateFailFast,
		noDowngrade:  updateNoDowngrade,
		reportPath:   updateReport,
	})
	if report != nil {
		displayUpdateResults(report)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// displayUpdateResults formats and displays a run report
func displayUpdateResults(report *autoupdate.Report) {
	fmt.Println()
	output.Header.Println("Dependency Check Results")
	fmt.Println()

	for _, r := range report.Results {
		name := output.FormatDependency(r.Dependency.Name)
		status := output.FormatOutcome(string(r.Outcome))

		switch r.Outcome {
		case autoupdate.OutcomeFailed:
			fmt.Printf("  %s %v\n", status, r.Err)
		case autoupdate.OutcomeUpdated, autoupdate.OutcomeDowngradeSkipped:
			fmt.Printf("  %s %s %s → %s\n", status, name, r.PreviousVersion, r.Version)
		default:
			fmt.Printf("  %s %s %s\n", status, name, output.Sprintf(output.Dim, "(%s)", r.Version))
		}
	}

	fmt.Println()
	if report.DryRun {
		output.PrintInfo("Dry run: %s was not modified", report.Definitions)
	}
	if failed := report.Failed(); len(failed) > 0 {
		output.PrintWarning("%d dependency(ies) failed", len(failed))
	}
	fmt.Println(report.Summary())
}
