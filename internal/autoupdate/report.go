// Package autoupdate provides run reporting and commit message export.
package autoupdate

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoUpdatesMessage is reported when no dependency changed
const NoUpdatesMessage = "No updates"

// GitHubEnvVar names the file a GitHub Actions step can append variables to
const GitHubEnvVar = "GITHUB_ENV"

// CommitMessageVar is the variable written to the GitHub env file
const CommitMessageVar = "COMMIT_MESSAGE"

// Result represents the result of checking a single dependency.
type Result struct {
	// Dependency is the checked descriptor
	Dependency Dependency
	// FeedURL is the resolved feed location
	FeedURL string
	// Link is the newest release link found in the feed
	Link string
	// Tag is the last path segment of Link
	Tag string
	// Version is the normalized version
	Version string
	// PreviousVersion is the version held before the check
	PreviousVersion string
	// Outcome is the result classification
	Outcome Outcome
	// Err is set when Outcome is failed
	Err error
}

// fail marks the result as failed, wrapping err with the dependency name.
func (r *Result) fail(err error) *Result {
	r.Outcome = OutcomeFailed
	r.Err = fmt.Errorf("%s: %w", r.Dependency.Name, err)
	return r
}

// Description returns "<name> to <version>" for updated dependencies and ""
// otherwise.
func (r *Result) Description() string {
	if r.Outcome != OutcomeUpdated {
		return ""
	}
	return fmt.Sprintf("%s to %s", r.Dependency.Name, r.Version)
}

// Report is the ordered outcome of a run.
type Report struct {
	// Definitions is the patched file path
	Definitions string
	// DryRun is true when nothing was written
	DryRun bool
	// Results holds one entry per processed dependency
	Results []Result
}

// Updates returns the descriptions of updated dependencies in order.
func (r *Report) Updates() []string {
	var updates []string
	for i := range r.Results {
		if d := r.Results[i].Description(); d != "" {
			updates = append(updates, d)
		}
	}
	return updates
}

// Failed returns the failed results in order.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// CommitMessage returns "Update a to 1.2, b to 3.4", or "" without updates.
func (r *Report) CommitMessage() string {
	return CommitMessage(r.Updates())
}

// Summary returns the commit message or NoUpdatesMessage.
func (r *Report) Summary() string {
	if msg := r.CommitMessage(); msg != "" {
		return msg
	}
	return NoUpdatesMessage
}

// CommitMessage joins update descriptions into a single commit subject.
func CommitMessage(updates []string) string {
	if len(updates) == 0 {
		return ""
	}
	return "Update " + strings.Join(updates, ", ")
}

// AppendGitHubEnv appends COMMIT_MESSAGE=<message> to the file at path.
// No trailing newline is written. An empty message writes nothing.
func AppendGitHubEnv(path, message string) error {
	if message == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s file: %w", GitHubEnvVar, err)
	}
	defer f.Close()

	if _, err := f.WriteString(CommitMessageVar + "=" + message); err != nil {
		return fmt.Errorf("failed to write %s file: %w", GitHubEnvVar, err)
	}
	return nil
}

// ExportCommitMessage appends the commit message to $GITHUB_ENV when set and
// at least one dependency was updated. Returns whether anything was written.
func (r *Report) ExportCommitMessage() (bool, error) {
	path := os.Getenv(GitHubEnvVar)
	msg := r.CommitMessage()
	if path == "" || msg == "" {
		return false, nil
	}
	if err := AppendGitHubEnv(path, msg); err != nil {
		return false, err
	}
	return true, nil
}

// reportEntry is the YAML form of a Result
type reportEntry struct {
	Name     string  `yaml:"name"`
	Feed     string  `yaml:"feed"`
	Link     string  `yaml:"link,omitempty"`
	Tag      string  `yaml:"tag,omitempty"`
	Version  string  `yaml:"version,omitempty"`
	Previous string  `yaml:"previous,omitempty"`
	Outcome  Outcome `yaml:"outcome"`
	Error    string  `yaml:"error,omitempty"`
}

// reportFile is the YAML document written by WriteReport
type reportFile struct {
	Definitions   string        `yaml:"definitions"`
	DryRun        bool          `yaml:"dry_run"`
	CommitMessage string        `yaml:"commit_message,omitempty"`
	Dependencies  []reportEntry `yaml:"dependencies"`
}

// MarshalYAML renders the report document.
func (r *Report) MarshalYAML() (interface{}, error) {
	doc := reportFile{
		Definitions:   r.Definitions,
		DryRun:        r.DryRun,
		CommitMessage: r.CommitMessage(),
		Dependencies:  make([]reportEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := reportEntry{
			Name:     res.Dependency.Name,
			Feed:     res.FeedURL,
			Link:     res.Link,
			Tag:      res.Tag,
			Version:  res.Version,
			Previous: res.PreviousVersion,
			Outcome:  res.Outcome,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		}
		doc.Dependencies = append(doc.Dependencies, entry)
	}
	return doc, nil
}

// WriteReport writes the report as YAML to path.
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
