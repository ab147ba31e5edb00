// Package autoupdate provides release fetching for dependency updates.
package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Error variables for fetch errors
var (
	// ErrFetchFailed is returned when the feed could not be retrieved
	ErrFetchFailed = errors.New("failed to fetch release feed")
	// ErrUnexpectedStatus is returned for non-2xx feed responses
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Fetcher retrieves a release feed and extracts the newest release link.
type Fetcher struct {
	httpClient *RetryableHTTPClient
	parser     Parser
}

// NewFetcher creates a fetcher. A nil client or parser selects the defaults.
func NewFetcher(client *RetryableHTTPClient, parser Parser) *Fetcher {
	if client == nil {
		client = NewRetryableHTTPClient()
	}
	if parser == nil {
		parser = &AtomParser{}
	}
	return &Fetcher{httpClient: client, parser: parser}
}

// LatestLink fetches url and returns the link of its first entry.
func (f *Fetcher) LatestLink(ctx context.Context, url string) (string, error) {
	return f.Fetch(ctx, url, f.parser)
}

// Fetch fetches url and runs parser over the body.
func (f *Fetcher) Fetch(ctx context.Context, url string, parser Parser) (string, error) {
	content, err := f.fetchContent(ctx, url)
	if err != nil {
		return "", err
	}
	return parser.Parse(content)
}

// fetchContent fetches the body of url, requiring a 2xx status.
func (f *Fetcher) fetchContent(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.httpClient.GetWithContext(ctx, url)
	if err != nil {
		if resp != nil && resp.StatusCode != 0 {
			return nil, fmt.Errorf("%w: %d from %s: %v", ErrUnexpectedStatus, resp.StatusCode, url, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}

	return content, nil
}
