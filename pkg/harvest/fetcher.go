// Package harvest turns a list of webpage URLs into an ordered list of image
// download candidates: it fetches and parses each page concurrently, then
// interleaves the per-page image lists round-robin.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"
)

// Response is the outcome of one successful HTTP GET.
type Response struct {
	// FinalURL is the URL after following redirects; relative references on
	// the page must be resolved against it, not the requested URL.
	FinalURL    string
	ContentType string
	Body        []byte
}

// Fetcher performs single-attempt HTTP GETs with a per-request timeout and
// an identifying User-Agent. It never retries; retry policy belongs to the
// batch loop.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     logger.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(timeout time.Duration, userAgent string, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		logger:    log,
	}
}

// Fetch performs one HTTP GET. It fails with a typed fetch error on network
// failure, timeout or a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.NewFetch(rawURL, "failed to create request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	f.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"url": rawURL,
	})

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      rawURL,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.NewFetch(rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, errs.NewFetch(rawURL, fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewFetch(rawURL, "failed to read response body", err)
	}

	f.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      rawURL,
		"status":   resp.StatusCode,
		"size":     len(body),
		"duration": time.Since(start),
	})

	return &Response{
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
