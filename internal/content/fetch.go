package content

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves remote content for classification.
type Fetcher interface {
	// Get fetches url and returns the body plus the Content-Type response
	// header, empty when the server did not send one.
	Get(url string) (data []byte, contentType string, err error)
}

// HTTPFetcher is the default Fetcher over net/http.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Get performs a plain GET. Non-2xx responses still return their body, so
// a server's error page becomes the content, matching how a browser would
// show it.
func (f *HTTPFetcher) Get(url string) ([]byte, string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
