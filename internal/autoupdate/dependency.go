// Package autoupdate provides the tracked dependency table and version normalization.
package autoupdate

import (
	"strings"
)

// githubHost is the hosting service used for owner/repo feed slugs
const githubHost = "github.com"

// freetypeName is the only built-in dependency whose tags use hyphens as separators
const freetypeName = "freetype"

// Dependency describes one upstream dependency tracked in the definitions file.
type Dependency struct {
	// Name is the unique identifier, e.g. "zlib". Its uppercase form prefixes
	// the assignment key in the definitions file (ZLIB_VERSION).
	Name string `toml:"name"`
	// Feed is either an https URL to an Atom feed or a GitHub "owner/repo" slug
	Feed string `toml:"feed"`
	// VersionPrefix is stripped from the start of the release tag
	VersionPrefix string `toml:"prefix"`
	// HyphenSeparators marks tags that separate version parts with hyphens (VER-2-13-0)
	HyphenSeparators bool `toml:"hyphen_separators,omitempty"`
	// Selector reads the tag from an HTML release page instead of an Atom feed
	Selector string `toml:"selector,omitempty"`
	// XPath is an alternative to Selector
	XPath string `toml:"xpath,omitempty"`
}

// defaultDependencies is the built-in table, in processing order.
var defaultDependencies = []Dependency{
	{Name: "bzip2", Feed: "https://gitlab.com/bzip2/bzip2/-/tags?format=atom", VersionPrefix: "bzip2-"},
	{Name: "freetype", Feed: "freetype/freetype", VersionPrefix: "VER-", HyphenSeparators: true},
	{Name: "giflib", Feed: "https://libraries.io/conda/giflib/versions.atom"},
	{Name: "harfbuzz", Feed: "harfbuzz/harfbuzz"},
	{Name: "jpegturbo", Feed: "libjpeg-turbo/libjpeg-turbo"},
	{Name: "lcms2", Feed: "mm2/Little-CMS", VersionPrefix: "lcms"},
	{Name: "libpng", Feed: "glennrp/libpng", VersionPrefix: "v"},
	{Name: "libwebp", Feed: "webmproject/libwebp", VersionPrefix: "v"},
	{Name: "libxcb", Feed: "https://libraries.io/conda/libxcb/versions.atom", VersionPrefix: "v"},
	{Name: "openjpeg", Feed: "uclouvain/openjpeg", VersionPrefix: "v"},
	{Name: "tiff", Feed: "https://gitlab.com/libtiff/libtiff/-/tags?format=atom", VersionPrefix: "v"},
	{Name: "xz", Feed: "libarchive/xz", VersionPrefix: "v"},
	{Name: "zlib", Feed: "madler/zlib", VersionPrefix: "v"},
}

// DefaultDependencies returns a copy of the built-in dependency table.
func DefaultDependencies() []Dependency {
	deps := make([]Dependency, len(defaultDependencies))
	copy(deps, defaultDependencies)
	return deps
}

// FeedURL resolves a feed descriptor to a fully-qualified URL.
// Inputs starting with "https:" are returned unchanged; anything else is
// treated as a GitHub slug and mapped to its tags.atom feed. Slugs are not
// validated, a malformed slug yields a URL that fails at fetch time.
func FeedURL(feed string) string {
	if strings.HasPrefix(feed, "https:") {
		return feed
	}
	return "https://" + githubHost + "/" + feed + "/tags.atom"
}

// FeedURL returns the resolved feed URL for the dependency.
func (d Dependency) FeedURL() string {
	return FeedURL(d.Feed)
}

// DefinitionKey returns the assignment key used in the definitions file.
func (d Dependency) DefinitionKey() string {
	return DefinitionKey(d.Name)
}

// DefinitionKey returns NAME_VERSION for a dependency name.
func DefinitionKey(name string) string {
	return strings.ToUpper(name) + "_VERSION"
}

// ScrapesPage reports whether the feed is an HTML page read with a selector.
func (d Dependency) ScrapesPage() bool {
	return d.Selector != "" || d.XPath != ""
}

// usesHyphenSeparators reports whether tag hyphens must become dots.
func (d Dependency) usesHyphenSeparators() bool {
	return d.HyphenSeparators || d.Name == freetypeName
}

// Normalize turns a raw release tag into the version written to the
// definitions file. One leading occurrence of the version prefix is removed;
// for hyphen-separated dependencies every remaining hyphen becomes a dot.
// The result is not validated here.
func Normalize(dep Dependency, tag string) string {
	version := strings.TrimPrefix(tag, dep.VersionPrefix)
	if dep.usesHyphenSeparators() {
		version = strings.ReplaceAll(version, "-", ".")
	}
	return version
}
