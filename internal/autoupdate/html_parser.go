// Package autoupdate provides release page scraping for dependencies without a feed.
package autoupdate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Error variables for HTML parser errors
var (
	// ErrInvalidXPath is returned when the XPath expression syntax is invalid
	ErrInvalidXPath = errors.New("invalid XPath expression")
	// ErrNoElementFound is returned when no element matches the selector/xpath
	ErrNoElementFound = errors.New("no element found matching selector")
	// ErrNoSelectorOrXPath is returned when neither selector nor xpath is provided
	ErrNoSelectorOrXPath = errors.New("either selector or xpath must be provided")
	// ErrEmptyTag is returned when the matched element has no text
	ErrEmptyTag = errors.New("matched element has no text")
)

// HTMLParser reads the newest release tag from an HTML release page
// using a CSS selector or an XPath expression. The trimmed text of the
// first match is the tag.
type HTMLParser struct {
	// Selector is the CSS selector of the element holding the tag
	Selector string
	// XPath is an alternative to Selector
	XPath string
}

// NewHTMLParser creates a parser; at least one of selector or xpath is required.
func NewHTMLParser(selector, xpath string) (*HTMLParser, error) {
	if selector == "" && xpath == "" {
		return nil, ErrNoSelectorOrXPath
	}
	return &HTMLParser{Selector: selector, XPath: xpath}, nil
}

// Parse returns the text of the first matching element.
// The CSS selector wins when both are set.
func (p *HTMLParser) Parse(content []byte) (string, error) {
	var text string
	var err error

	switch {
	case p.Selector != "":
		text, err = p.parseWithCSS(content)
	case p.XPath != "":
		text, err = p.parseWithXPath(content)
	default:
		return "", ErrNoSelectorOrXPath
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTag
	}
	return text, nil
}

// parseWithCSS extracts text content using a CSS selector (goquery).
func (p *HTMLParser) parseWithCSS(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(p.Selector)
	if selection.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.Selector)
	}
	return selection.First().Text(), nil
}

// parseWithXPath extracts text content using an XPath expression (htmlquery).
func (p *HTMLParser) parseWithXPath(content []byte) (string, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, p.XPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidXPath, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoElementFound, p.XPath)
	}
	return htmlquery.InnerText(nodes[0]), nil
}
