// Package autoupdate provides release feed parsing for dependency updates.
package autoupdate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed/atom"
)

// Error variables for parser errors
var (
	// ErrMalformedFeed is returned when the content is not a valid Atom feed
	ErrMalformedFeed = errors.New("malformed Atom feed")
	// ErrEmptyFeed is returned when the feed contains no entries
	ErrEmptyFeed = errors.New("feed contains no entries")
	// ErrNoLinks is returned when the newest entry carries no link
	ErrNoLinks = errors.New("newest feed entry has no links")
	// ErrMalformedLink is returned when no tag can be taken from a release link
	ErrMalformedLink = errors.New("release link has no tag segment")
)

// Parser defines the interface for release link extraction from feed content.
type Parser interface {
	// Parse extracts the link of the most recent release from the given content.
	Parse(content []byte) (string, error)
}

// AtomParser reads Atom feeds as published by GitHub, GitLab and libraries.io.
// Only the first entry is consulted; the feed order is trusted as is.
type AtomParser struct{}

// Parse returns the href of the first link of the first entry.
func (p *AtomParser) Parse(content []byte) (string, error) {
	feed, err := (&atom.Parser{}).Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	if len(feed.Entries) == 0 || feed.Entries[0] == nil {
		return "", ErrEmptyFeed
	}

	entry := feed.Entries[0]
	if len(entry.Links) == 0 || entry.Links[0] == nil || entry.Links[0].Href == "" {
		return "", ErrNoLinks
	}

	return entry.Links[0].Href, nil
}

// TagFromLink returns the last path segment of a release link,
// e.g. "https://github.com/madler/zlib/releases/tag/v1.3.1" -> "v1.3.1".
func TagFromLink(link string) (string, error) {
	i := strings.LastIndex(link, "/")
	if i < 0 || i == len(link)-1 {
		return "", fmt.Errorf("%w: %q", ErrMalformedLink, link)
	}
	return link[i+1:], nil
}
