package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchFailedPlaceholder replaces the body of a text document whose remote
// content could not be retrieved. Fetch failures degrade to this string
// and are logged; they never propagate as errors.
const FetchFailedPlaceholder = "Failed to load text."

// maxFetchBytes caps remote text bodies. Anything larger is truncated.
const maxFetchBytes = 20 << 20

// Fetcher retrieves the textual body of a remotely stored document.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches remote text over HTTP with a bounded timeout and a
// single retry before giving up.
type HTTPFetcher struct {
	client  *http.Client
	retries int
}

// NewHTTPFetcher creates a fetcher with the given per-attempt timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		retries: 1,
	}
}

// FetchText retrieves url as text. The request is cancelled when ctx is,
// so a disconnected client does not leave the fetch running.
func (f *HTTPFetcher) FetchText(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		text, err := f.fetchOnce(ctx, url)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func readAllLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxFetchBytes))
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read fetch body: %w", err)
	}

	return string(body), nil
}
