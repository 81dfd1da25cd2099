package scraper

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
)

const (
	UserAgent = "Mozilla/5.0"
	Timeout   = 30 * time.Second
)

// FetchError reports a failed page download: either the request never got a
// response (StatusCode is 0) or the server answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Scraper downloads sports-reference pages
type Scraper struct {
	client    *http.Client
	userAgent string
	metrics   *logger.Metrics
}

// Option configures a Scraper
type Option func(*Scraper)

// WithUserAgent overrides the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout overrides the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithMetrics records fetch counters and timings on m instead of the default tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		userAgent: UserAgent,
		metrics:   logger.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch downloads url and returns the response body. Any transport failure or
// non-2xx response is returned as a *FetchError. Requests are not retried.
func (s *Scraper) Fetch(url string) (string, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordTiming("fetch.duration", time.Since(start))
	}()
	s.metrics.IncrCounter("fetch.requests")

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)

	logger.Debug("Fetching page", logger.Fields{"url": url})

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	logger.Debug("Fetched page", logger.Fields{
		"url":   url,
		"bytes": len(body),
	})

	return string(body), nil
}
