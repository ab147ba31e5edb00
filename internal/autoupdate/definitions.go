// Package autoupdate provides the definitions file patcher.
package autoupdate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Error variables for definitions file errors
var (
	// ErrDefinitionsNotFound is returned when the definitions file does not exist
	ErrDefinitionsNotFound = errors.New("definitions file not found")
	// ErrMalformedAssignment is returned when a live assignment line has a value
	// outside the digits-and-dots grammar, or trailing text that is not a comment
	ErrMalformedAssignment = errors.New("malformed version assignment")
	// ErrUnsupportedVersion is returned when a new version cannot be written
	// because it is not made of digits and dots
	ErrUnsupportedVersion = errors.New("unsupported version format")
)

// DefaultDefinitionsFile is the definitions file used when none is configured
const DefaultDefinitionsFile = "config.sh"

// NoAutoBumpMarker pins an assignment line when used as its trailing comment,
// e.g. "ZLIB_VERSION=1.2.13 # no-auto-bump"
const NoAutoBumpMarker = "no-auto-bump"

// versionValuePattern is the value grammar of an assignment line
var versionValuePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)

// Outcome is the per-dependency result of an update check.
type Outcome string

// Outcome constants
const (
	// OutcomeUpdated means the definitions file now holds the new version
	OutcomeUpdated Outcome = "updated"
	// OutcomeUpToDate means every live assignment already holds the version
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomePinned means the only assignments carry the no-auto-bump marker
	OutcomePinned Outcome = "pinned"
	// OutcomeNotFound means the definitions file has no assignment for the dependency
	OutcomeNotFound Outcome = "not-found"
	// OutcomeDowngradeSkipped means the feed version is older than the current one
	OutcomeDowngradeSkipped Outcome = "downgrade-skipped"
	// OutcomeFailed means fetching, parsing or patching failed
	OutcomeFailed Outcome = "failed"
)

// Outcomes returns every outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeUpdated,
		OutcomeUpToDate,
		OutcomePinned,
		OutcomeNotFound,
		OutcomeDowngradeSkipped,
		OutcomeFailed,
	}
}

// IsValidVersion reports whether v satisfies the assignment value grammar.
func IsValidVersion(v string) bool {
	return versionValuePattern.MatchString(v)
}

// PatchResult describes the effect of patching one dependency.
type PatchResult struct {
	// Content is the full file content after patching
	Content []byte
	// Outcome is updated, up-to-date, pinned or not-found
	Outcome Outcome
	// PreviousVersion is the value of the first live assignment before patching
	PreviousVersion string
	// Lines holds the 1-based numbers of the live assignment lines
	Lines []int
}

// Changed reports whether the patch modified the content.
func (r *PatchResult) Changed() bool {
	return r.Outcome == OutcomeUpdated
}

// assignment is one line of the form [indent]KEY=VALUE[ # comment]
type assignment struct {
	value      string
	valueStart int
	valueEnd   int
	comment    string
	malformed  bool
}

func (a assignment) pinned() bool {
	return strings.TrimSpace(a.comment) == NoAutoBumpMarker
}

// parseAssignment parses body (a line without terminator) as an assignment
// to key. Leading spaces and tabs are allowed, so assignments nested in
// shell if/else blocks match. ok is false when the line does not assign key.
func parseAssignment(body, key string) (a assignment, ok bool) {
	indent := len(body) - len(strings.TrimLeft(body, " \t"))
	prefix := key + "="
	if !strings.HasPrefix(body[indent:], prefix) {
		return a, false
	}

	a.valueStart = indent + len(prefix)
	a.valueEnd = len(body)
	if i := strings.IndexAny(body[a.valueStart:], " \t#"); i >= 0 {
		a.valueEnd = a.valueStart + i
	}
	a.value = body[a.valueStart:a.valueEnd]

	rest := strings.TrimLeft(body[a.valueEnd:], " \t")
	switch {
	case rest == "":
	case rest[0] == '#':
		a.comment = rest[1:]
	default:
		a.malformed = true
	}

	if !IsValidVersion(a.value) {
		a.malformed = true
	}
	return a, true
}

// splitLines splits content into lines, each keeping its terminator.
// The final line may be unterminated.
func splitLines(content string) []string {
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitTerminator separates a line from its "\n" or "\r\n" terminator.
func splitTerminator(line string) (body, term string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// Patch rewrites every live NAME_VERSION assignment in content to version.
// Pinned lines and all other bytes are preserved, including indentation
// and line terminators. An unterminated last line is matched and rewritten
// like any other line, unlike a pattern that requires a trailing newline.
// Patching is idempotent: a second call with the same arguments reports
// up-to-date.
func Patch(content []byte, name, version string) (*PatchResult, error) {
	if !IsValidVersion(version) {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnsupportedVersion, version, name)
	}

	key := DefinitionKey(name)
	lines := splitLines(string(content))

	result := &PatchResult{}
	pinned := 0

	var b strings.Builder
	b.Grow(len(content) + len(version))
	for i, line := range lines {
		body, term := splitTerminator(line)
		a, ok := parseAssignment(body, key)
		if !ok {
			b.WriteString(line)
			continue
		}
		if a.pinned() {
			pinned++
			b.WriteString(line)
			continue
		}
		if a.malformed {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedAssignment, i+1, body)
		}

		result.Lines = append(result.Lines, i+1)
		if result.PreviousVersion == "" {
			result.PreviousVersion = a.value
		}
		b.WriteString(body[:a.valueStart])
		b.WriteString(version)
		b.WriteString(body[a.valueEnd:])
		b.WriteString(term)
	}

	patched := []byte(b.String())
	switch {
	case len(result.Lines) == 0 && pinned > 0:
		result.Outcome = OutcomePinned
	case len(result.Lines) == 0:
		result.Outcome = OutcomeNotFound
	case bytes.Equal(patched, content):
		result.Outcome = OutcomeUpToDate
	default:
		result.Outcome = OutcomeUpdated
	}

	if result.Outcome == OutcomeUpdated {
		result.Content = patched
	} else {
		result.Content = content
	}
	return result, nil
}

// CurrentVersion returns the value of the first live, well-formed assignment
// for name, or false when there is none.
func CurrentVersion(content []byte, name string) (string, bool) {
	key := DefinitionKey(name)
	for _, line := range splitLines(string(content)) {
		body, _ := splitTerminator(line)
		a, ok := parseAssignment(body, key)
		if !ok || a.pinned() || a.malformed {
			continue
		}
		return a.value, true
	}
	return "", false
}

// DefinitionsFile holds a definitions file in memory between patches.
type DefinitionsFile struct {
	// path is the file location on disk
	path string
	// mode is preserved when the file is rewritten
	mode os.FileMode
	// saved is the content currently on disk
	saved []byte
	// content is the patched in-memory content
	content []byte
}

// LoadDefinitions reads the definitions file at path fully into memory.
func LoadDefinitions(path string) (*DefinitionsFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDefinitionsNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat definitions file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}

	return &DefinitionsFile{
		path:    path,
		mode:    info.Mode().Perm(),
		saved:   data,
		content: data,
	}, nil
}

// Path returns the file location.
func (d *DefinitionsFile) Path() string {
	return d.path
}

// Content returns the current in-memory content.
func (d *DefinitionsFile) Content() []byte {
	return d.content
}

// CurrentVersion returns the live version assigned to name.
func (d *DefinitionsFile) CurrentVersion(name string) (string, bool) {
	return CurrentVersion(d.content, name)
}

// Apply patches the in-memory content. On error the content is left untouched.
func (d *DefinitionsFile) Apply(name, version string) (*PatchResult, error) {
	result, err := Patch(d.content, name, version)
	if err != nil {
		return nil, err
	}
	d.content = result.Content
	return result, nil
}

// Dirty reports whether the in-memory content differs from the file on disk.
func (d *DefinitionsFile) Dirty() bool {
	return !bytes.Equal(d.content, d.saved)
}

// Save writes the content back if it changed. The write goes to a temp file
// that is renamed over the original. Returns whether anything was written.
func (d *DefinitionsFile) Save() (bool, error) {
	if !d.Dirty() {
		return false, nil
	}

	tmpPath := d.path + ".tmp"
	if err := os.WriteFile(tmpPath, d.content, d.mode); err != nil {
		return false, fmt.Errorf("failed to write definitions file: %w", err)
	}

	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("failed to rename definitions file: %w", err)
	}

	d.saved = d.content
	return true, nil
}
