package europepmc

import (
	"context"
	"encoding/xml"
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
	// BaseURL is the Europe PMC REST API base URL.
	BaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	serviceName = "europepmc"
)

// Common errors returned by the Europe PMC client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Europe PMC")

	// ErrInvalidResponse indicates a body that is not a search response.
	ErrInvalidResponse = errors.New("invalid response from Europe PMC")

	// ErrAPIError indicates a non-success HTTP status.
	ErrAPIError = errors.New("Europe PMC API error")
)

// RequestObserver receives one observation per HTTP request.
type RequestObserver interface {
	ObserveRequest(service, status string, elapsed time.Duration)
}

// Client is an HTTP client for the Europe PMC search endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
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

// WithInterval sets a fixed minimum delay between requests.
func WithInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
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

// NewClient creates a new Europe PMC client. Requests are unpaced by default.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		baseURL:    BaseURL,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchDOI runs an exact DOI query with the "core" result type and returns
// the first hit, or nil if the service has no record for the DOI.
func (c *Client) SearchDOI(ctx context.Context, doi string) (*Result, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf(`DOI:"%s"`, doi))
	query.Set("resultType", "core")
	query.Set("format", "xml")

	wrapper, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(wrapper.Results) == 0 {
		return nil, nil
	}
	return &wrapper.Results[0], nil
}

func (c *Client) search(ctx context.Context, query url.Values) (*ResponseWrapper, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("network_error", start)
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()
	c.observe(fmt.Sprintf("%d", resp.StatusCode), start)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, string(body))
	}

	var wrapper ResponseWrapper
	if err := xml.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("%w: parsing XML: %v", ErrInvalidResponse, err)
	}
	return &wrapper, nil
}

func (c *Client) observe(status string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(serviceName, status, time.Since(start))
	}
}
