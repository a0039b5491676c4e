package crossref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Crossref REST API base URL.
	BaseURL = "https://api.crossref.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultInterval is the fixed delay between consecutive requests.
	DefaultInterval = time.Second

	// DefaultRows is the page size for works search (Crossref maximum).
	DefaultRows = 1000

	// InitialCursor starts a deep-paging cursor sequence.
	InitialCursor = "*"

	// serviceName labels requests in metrics.
	serviceName = "crossref"
)

// RequestObserver receives one observation per HTTP request.
type RequestObserver interface {
	ObserveRequest(service, status string, elapsed time.Duration)
}

// Client is a paced HTTP client for the Crossref REST API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
	rows       int
	logger     *slog.Logger
	observer   RequestObserver
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto sets the contact email that places requests in the polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithUserAgent sets the User-Agent product token.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithInterval sets the fixed minimum delay between requests. Zero disables pacing.
func WithInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(d)
	}
}

// WithRows sets the works search page size.
func WithRows(rows int) ClientOption {
	return func(c *Client) {
		if rows > 0 {
			c.rows = rows
		}
	}
}

// WithLogger sets the logger for fetch outcomes.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets a request observer (metrics).
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new Crossref API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    newLimiter(DefaultInterval),
		baseURL:    BaseURL,
		userAgent:  "scholar/dev",
		rows:       DefaultRows,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newLimiter allows one request per interval with no burst.
func newLimiter(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}

// getJSON performs a paced GET and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	if c.mailto != "" {
		query.Set("mailto", c.mailto)
	}

	reqURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgentHeader())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("network_error", start)
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()
	c.observe(fmt.Sprintf("%d", resp.StatusCode), start)

	if err := checkHTTPErrors(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) userAgentHeader() string {
	if c.mailto != "" {
		return fmt.Sprintf("%s (mailto:%s)", c.userAgent, c.mailto)
	}
	return c.userAgent
}

func (c *Client) observe(status string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(serviceName, status, time.Since(start))
	}
}

// GetWork fetches the metadata record for a DOI.
func (c *Client) GetWork(ctx context.Context, doi string) (*Work, error) {
	var wrapper workResponse
	if err := c.getJSON(ctx, "/works/"+url.PathEscape(doi), nil, &wrapper); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.DOI = doi
		}
		return nil, err
	}
	if wrapper.Message == nil {
		return nil, fmt.Errorf("%w: missing message for %s", ErrInvalidResponse, doi)
	}
	return wrapper.Message, nil
}

// SearchWorks fetches one page of GET /works with the given query parameters.
func (c *Client) SearchWorks(ctx context.Context, query url.Values) (*WorksPage, error) {
	var wrapper worksResponse
	if err := c.getJSON(ctx, "/works", query, &wrapper); err != nil {
		return nil, err
	}
	if wrapper.Message == nil {
		return nil, fmt.Errorf("%w: missing message", ErrInvalidResponse)
	}
	return wrapper.Message, nil
}
