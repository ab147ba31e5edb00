package autoupdate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinitions = `#!/usr/bin/env bash
# Versions of the bundled libraries
ZLIB_VERSION=1.3
LIBPNG_VERSION=1.6.40
FREETYPE_VERSION=2.13.0 # no-auto-bump

export ZLIB_VERSION
`

// genNumericVersion generates dotted numeric versions such as 1.2.13
func genNumericVersion() gopter.Gen {
	return gen.SliceOfN(3, gen.IntRange(0, 99)).Map(func(parts []int) string {
		s := make([]string, len(parts))
		for i, p := range parts {
			s[i] = fmt.Sprint(p)
		}
		return strings.Join(s, ".")
	})
}

// TestPatchIdempotence tests that a second patch with the same version is a no-op
func TestPatchIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("patching twice reports up-to-date with equal content", prop.ForAll(
		func(version string) bool {
			first, err := Patch([]byte(sampleDefinitions), "zlib", version)
			if err != nil {
				return false
			}
			second, err := Patch(first.Content, "zlib", version)
			if err != nil {
				return false
			}
			return !second.Changed() &&
				second.Outcome == OutcomeUpToDate &&
				string(second.Content) == string(first.Content)
		},
		genNumericVersion(),
	))

	properties.TestingRun(t)
}

// TestPatchReplacesOnlyMatchingLine tests that other lines are preserved byte-for-byte
func TestPatchReplacesOnlyMatchingLine(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("only the value of the matching line changes", prop.ForAll(
		func(name, oldVersion, newVersion string) bool {
			if oldVersion == newVersion {
				return true
			}
			key := DefinitionKey(name)
			before := []string{"# header", "UNRELATED_1=" + oldVersion, "", "echo " + key + "=" + oldVersion}
			after := []string{"export " + key, "TAIL=1"}
			content := strings.Join(before, "\n") + "\n  \t" + key + "=" + oldVersion + "\n" + strings.Join(after, "\n")

			result, err := Patch([]byte(content), name, newVersion)
			if err != nil || !result.Changed() {
				return false
			}
			want := strings.Join(before, "\n") + "\n  \t" + key + "=" + newVersion + "\n" + strings.Join(after, "\n")
			return string(result.Content) == want &&
				result.PreviousVersion == oldVersion &&
				len(result.Lines) == 1 && result.Lines[0] == len(before)+1
		},
		gen.Identifier(),
		genNumericVersion(),
		genNumericVersion(),
	))

	properties.TestingRun(t)
}

// TestPatchNonNumericValueIsLeftUnchanged tests that FOO_VERSION=abc is never rewritten
func TestPatchNonNumericValueIsLeftUnchanged(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("a non-numeric value is reported and kept", prop.ForAll(
		func(version string) bool {
			path := filepath.Join(t.TempDir(), "config.sh")
			if err := os.WriteFile(path, []byte("FOO_VERSION=abc\n"), 0644); err != nil {
				return false
			}
			defs, err := LoadDefinitions(path)
			if err != nil {
				return false
			}

			_, err = defs.Apply("foo", version)
			return err != nil &&
				errors.Is(err, ErrMalformedAssignment) &&
				string(defs.Content()) == "FOO_VERSION=abc\n" &&
				!defs.Dirty()
		},
		genNumericVersion(),
	))

	properties.TestingRun(t)
}

// TestPatchOutcomes tests the per-line classification
func TestPatchOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		dep      string
		version  string
		outcome  Outcome
		expected string
		previous string
	}{
		{
			name:     "updates a plain line",
			content:  "ZLIB_VERSION=1.2.13\n",
			dep:      "zlib",
			version:  "1.3.1",
			outcome:  OutcomeUpdated,
			expected: "ZLIB_VERSION=1.3.1\n",
			previous: "1.2.13",
		},
		{
			name:     "keeps an unterminated last line unterminated",
			content:  "A=1\nZLIB_VERSION=1.2",
			dep:      "zlib",
			version:  "1.3",
			outcome:  OutcomeUpdated,
			expected: "A=1\nZLIB_VERSION=1.3",
			previous: "1.2",
		},
		{
			name:     "keeps CRLF terminators",
			content:  "ZLIB_VERSION=1.2\r\nXZ_VERSION=5.4\r\n",
			dep:      "xz",
			version:  "5.6.2",
			outcome:  OutcomeUpdated,
			expected: "ZLIB_VERSION=1.2\r\nXZ_VERSION=5.6.2\r\n",
			previous: "5.4",
		},
		{
			name:     "keeps a trailing comment",
			content:  "XZ_VERSION=5.4 # from tukaani\n",
			dep:      "xz",
			version:  "5.6",
			outcome:  OutcomeUpdated,
			expected: "XZ_VERSION=5.6 # from tukaani\n",
			previous: "5.4",
		},
		{
			name:     "rewrites every live line",
			content:  "XZ_VERSION=5.4\nother\nXZ_VERSION=5.2\n",
			dep:      "xz",
			version:  "5.6",
			outcome:  OutcomeUpdated,
			expected: "XZ_VERSION=5.6\nother\nXZ_VERSION=5.6\n",
			previous: "5.4",
		},
		{
			name:     "rewrites indented lines in if/else blocks",
			content:  "if [[ -n \"$IS_MACOS\" ]]; then\n    GIFLIB_VERSION=5.1.4\nelse\n\tGIFLIB_VERSION=5.2.1\nfi\n",
			dep:      "giflib",
			version:  "5.2.2",
			outcome:  OutcomeUpdated,
			expected: "if [[ -n \"$IS_MACOS\" ]]; then\n    GIFLIB_VERSION=5.2.2\nelse\n\tGIFLIB_VERSION=5.2.2\nfi\n",
			previous: "5.1.4",
		},
		{
			name:     "keeps indented pinned lines",
			content:  "  XZ_VERSION=5.4.6 # no-auto-bump\n",
			dep:      "xz",
			version:  "5.6.2",
			outcome:  OutcomePinned,
			expected: "  XZ_VERSION=5.4.6 # no-auto-bump\n",
		},
		{
			name:     "reports up-to-date",
			content:  "ZLIB_VERSION=1.3.1\n",
			dep:      "zlib",
			version:  "1.3.1",
			outcome:  OutcomeUpToDate,
			expected: "ZLIB_VERSION=1.3.1\n",
			previous: "1.3.1",
		},
		{
			name:     "reports not-found",
			content:  "LIBPNG_VERSION=1.6.40\n",
			dep:      "zlib",
			version:  "1.3.1",
			outcome:  OutcomeNotFound,
			expected: "LIBPNG_VERSION=1.6.40\n",
		},
		{
			name:     "does not match a longer key",
			content:  "MYZLIB_VERSION=1.0\nZLIB_VERSION_OLD=1.0\n",
			dep:      "zlib",
			version:  "1.3.1",
			outcome:  OutcomeNotFound,
			expected: "MYZLIB_VERSION=1.0\nZLIB_VERSION_OLD=1.0\n",
		},
		{
			name:     "keeps pinned lines",
			content:  "FREETYPE_VERSION=2.13.0 # no-auto-bump\n",
			dep:      "freetype",
			version:  "2.13.2",
			outcome:  OutcomePinned,
			expected: "FREETYPE_VERSION=2.13.0 # no-auto-bump\n",
		},
		{
			name:     "updates live lines next to pinned ones",
			content:  "TIFF_VERSION=4.5.0 #no-auto-bump\nTIFF_VERSION=4.5.0\n",
			dep:      "tiff",
			version:  "4.6.0",
			outcome:  OutcomeUpdated,
			expected: "TIFF_VERSION=4.5.0 #no-auto-bump\nTIFF_VERSION=4.6.0\n",
			previous: "4.5.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Patch([]byte(tt.content), tt.dep, tt.version)
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.expected, string(result.Content))
			assert.Equal(t, tt.previous, result.PreviousVersion)
			assert.Equal(t, tt.outcome == OutcomeUpdated, result.Changed())
		})
	}
}

// TestPatchRejectsUnsupportedInput tests the explicit grammar errors
func TestPatchRejectsUnsupportedInput(t *testing.T) {
	_, err := Patch([]byte("ZLIB_VERSION=1.2\n"), "zlib", "1.3-rc1")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Patch([]byte("ZLIB_VERSION=1.2\n"), "zlib", "")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Patch([]byte("ZLIB_VERSION=1.2 extra\n"), "zlib", "1.3")
	assert.ErrorIs(t, err, ErrMalformedAssignment)

	_, err = Patch([]byte("ZLIB_VERSION=\n"), "zlib", "1.3")
	assert.ErrorIs(t, err, ErrMalformedAssignment)
}

// TestIsValidVersion tests the value grammar
func TestIsValidVersion(t *testing.T) {
	for _, v := range []string{"1", "1.2", "2.13.0", "10.0.0.1"} {
		assert.True(t, IsValidVersion(v), v)
	}
	for _, v := range []string{"", "v1.2", "1.", ".1", "1..2", "1.2-rc1", "abc"} {
		assert.False(t, IsValidVersion(v), v)
	}
}

// TestCurrentVersion tests reading the live value
func TestCurrentVersion(t *testing.T) {
	v, ok := CurrentVersion([]byte(sampleDefinitions), "libpng")
	assert.True(t, ok)
	assert.Equal(t, "1.6.40", v)

	_, ok = CurrentVersion([]byte(sampleDefinitions), "freetype")
	assert.False(t, ok, "pinned lines have no live version")

	_, ok = CurrentVersion([]byte(sampleDefinitions), "xz")
	assert.False(t, ok)

	v, ok = CurrentVersion([]byte("if true; then\n\tXZ_VERSION=5.6.2\nfi\n"), "xz")
	assert.True(t, ok)
	assert.Equal(t, "5.6.2", v)

	v, ok = CurrentVersion([]byte("XZ_VERSION=5.4\r\n"), "xz")
	assert.True(t, ok)
	assert.Equal(t, "5.4", v)
}

// TestDefinitionsFileSave tests the in-memory patch and atomic write
func TestDefinitionsFileSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.sh")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinitions), 0755))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	assert.Equal(t, path, defs.Path())

	written, err := defs.Save()
	require.NoError(t, err)
	assert.False(t, written, "clean files are not rewritten")

	result, err := defs.Apply("zlib", "1.3.1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, result.Outcome)
	assert.True(t, defs.Dirty())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDefinitions, string(onDisk), "Apply must not touch the disk")

	written, err = defs.Save()
	require.NoError(t, err)
	assert.True(t, written)
	assert.False(t, defs.Dirty())

	onDisk, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strings.Replace(sampleDefinitions, "ZLIB_VERSION=1.3\n", "ZLIB_VERSION=1.3.1\n", 1), string(onDisk))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

// TestLoadDefinitionsMissing tests the missing file error
func TestLoadDefinitionsMissing(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "missing.sh"))
	assert.ErrorIs(t, err, ErrDefinitionsNotFound)
}
