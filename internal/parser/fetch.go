package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpilot/crawler-service/internal/jobutil"
)

const (
	defaultUserAgent = "jobpilot-crawler/1.0 (+https://github.com/jobpilot/crawler-service)"
	defaultTimeout   = 30 * time.Second
)

// Fetcher performs the HTTP GET shared by all parser strategies. The body is
// treated as UTF-8 text. Transient failures are retried with exponential
// backoff before the source's crawl is declared failed.
type Fetcher struct {
	Client     *http.Client
	Token      string // optional bearer token for higher rate limits
	UserAgent  string
	MaxRetries int
	RetryDelay time.Duration
}

// NewFetcher constructs a Fetcher with default retry policy. token may be
// empty.
func NewFetcher(client *http.Client, token string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{
		Client:     client,
		Token:      token,
		UserAgent:  defaultUserAgent,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Fetch retrieves url and returns the response body as a string.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return jobutil.Retry(ctx, f.MaxRetries, f.RetryDelay, func() (string, error) {
		return f.fetchOnce(ctx, url)
	})
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/plain, text/markdown, text/html, application/json")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return string(body), nil
}
