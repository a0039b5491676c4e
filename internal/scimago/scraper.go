// Package scimago scrapes the Scimago journal rankings table and turns it
// into a journal list keyed by ISSN.
package scimago

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Scimago site root.
	BaseURL = "https://www.scimagojr.com"

	// DefaultPageDelay is the pause between ranking pages.
	DefaultPageDelay = 2 * time.Second

	// DefaultMaxJournals bounds a scrape.
	DefaultMaxJournals = 2000

	// PageSize is the number of rows requested per page.
	PageSize = 50

	// YearColumn is appended to every scraped row.
	YearColumn = "Year"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// ErrNoData is returned when a scrape yields no usable rows.
var ErrNoData = errors.New("no ranking data extracted")

// Scraper fetches ranking pages.
type Scraper struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) {
		s.httpClient = hc
	}
}

// WithBaseURL sets the site root (for testing).
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithPageDelay sets the pause between pages; zero disables it.
func WithPageDelay(d time.Duration) Option {
	return func(s *Scraper) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScraper creates a Scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(DefaultPageDelay), 1),
		baseURL:    BaseURL,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape collects up to max ranking rows for year.
//
// Headers come from the first page. Paging stops at the first page without a
// table or without rows, or at the first request error; rows collected before
// an error are kept. Rows whose width differs from the header are dropped.
func (s *Scraper) Scrape(ctx context.Context, year, max int) (*Table, error) {
	if max <= 0 {
		max = DefaultMaxJournals
	}

	var headers []string
	var rows [][]string
	for page := 1; len(rows) < max; page++ {
		pageHeaders, pageRows, err := s.fetchPage(ctx, year, page)
		if err != nil {
			s.logger.Error("scrape aborted", "year", year, "page", page, "error", err)
			break
		}
		if pageHeaders == nil && pageRows == nil {
			s.logger.Info("no table found", "year", year, "page", page)
			break
		}
		if page == 1 {
			headers = pageHeaders
		}
		if len(pageRows) == 0 {
			break
		}
		for _, row := range pageRows {
			rows = append(rows, row)
			if len(rows) >= max {
				break
			}
		}
		s.logger.Info("extracted journal entries", "year", year, "page", page, "total", len(rows))
	}

	if len(headers) == 0 || len(rows) == 0 {
		return nil, fmt.Errorf("%w for year %d", ErrNoData, year)
	}

	t := &Table{Headers: append(append([]string{}, headers...), YearColumn)}
	yearText := strconv.Itoa(year)
	for _, row := range rows {
		if len(row) != len(headers) {
			continue
		}
		t.Rows = append(t.Rows, append(row, yearText))
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows match the %d header columns", ErrNoData, len(headers))
	}
	return t, nil
}

// fetchPage returns nil headers and rows when the page has no table.
func (s *Scraper) fetchPage(ctx context.Context, year, page int) ([]string, [][]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("page", strconv.Itoa(page))
	query.Set("total_size", strconv.Itoa(PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/journalrank.php?"+query.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Referer", BaseURL+"/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching page %d: %w", page, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetching page %d: status %d", page, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing page %d: %w", page, err)
	}
	headers, rows := parseTable(doc)
	return headers, rows, nil
}

// parseTable reads the first table: header cells from its first row and
// data cells from the rest. Rows without data cells are skipped.
func parseTable(doc *goquery.Document) ([]string, [][]string) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, nil
	}

	trs := table.Find("tr")
	headers := []string{}
	trs.First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	rows := [][]string{}
	trs.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, strings.TrimSpace(td.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return headers, rows
}
