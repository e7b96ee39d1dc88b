package cards

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultDatasetURL is the EternalWarcry full card dataset.
	DefaultDatasetURL = "https://eternalwarcry.com/content/cards/eternal-cards.json"

	rateLimitDelay = 500 * time.Millisecond
	requestTimeout = 60 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client downloads the card dataset with rate limiting and retries.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

// NewClient creates a dataset download client.
func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		baseURL:     DefaultDatasetURL,
		userAgent:   "eternal-forge/1.0",
	}
}

// SetBaseURL overrides the dataset URL, mainly for tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// Download fetches the raw dataset JSON.
func (c *Client) Download(ctx context.Context) ([]byte, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			time.Sleep(backoff)
			backoff = min(backoff*2, maxBackoff)
		default:
			return nil, fmt.Errorf("dataset request failed with status %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// DownloadAndImport fetches the dataset and stores it through the importer.
func (c *Client) DownloadAndImport(ctx context.Context, importer *Importer) (*ImportStats, error) {
	data, err := c.Download(ctx)
	if err != nil {
		return nil, err
	}
	return importer.Import(ctx, data)
}
