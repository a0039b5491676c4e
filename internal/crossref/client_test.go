package crossref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newTestClient starts a server with the given handler and returns an
// unpaced client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithBaseURL(srv.URL), WithInterval(0)}, opts...)
	return NewClient(opts...)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []string
}

func (o *recordingObserver) ObserveRequest(service, status string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, service+":"+status)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	if c.baseURL != BaseURL {
		t.Errorf("baseURL = %s, want %s", c.baseURL, BaseURL)
	}
	if c.rows != DefaultRows {
		t.Errorf("rows = %d, want %d", c.rows, DefaultRows)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}
	if c.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestGetWork_PoliteHeaders(t *testing.T) {
	var gotPath, gotMailto, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMailto = r.URL.Query().Get("mailto")
		gotUA = r.Header.Get("User-Agent")
		writeJSON(w, `{"status":"ok","message":{"DOI":"10.1126/science.abc"}}`)
	}, WithMailto("team@example.org"), WithUserAgent("scholar/test"))

	work, err := c.GetWork(context.Background(), "10.1126/science.abc")
	if err != nil {
		t.Fatalf("GetWork() error = %v", err)
	}
	if work.DOI != "10.1126/science.abc" {
		t.Errorf("DOI = %q", work.DOI)
	}
	if gotPath != "/works/10.1126%2Fscience.abc" {
		t.Errorf("path = %q, want escaped DOI", gotPath)
	}
	if gotMailto != "team@example.org" {
		t.Errorf("mailto = %q", gotMailto)
	}
	if gotUA != "scholar/test (mailto:team@example.org)" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestGetWork_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		checkFn string
	}{
		{name: "not found", status: 404, body: "Resource not found.", check: IsNotFound, checkFn: "IsNotFound"},
		{name: "rate limited", status: 429, body: "", check: IsRateLimited, checkFn: "IsRateLimited"},
		{name: "malformed", status: 200, body: `{"message":`, check: func(err error) bool { return errors.Is(err, ErrInvalidResponse) }, checkFn: "ErrInvalidResponse"},
		{name: "missing message", status: 200, body: `{"status":"ok"}`, check: func(err error) bool { return errors.Is(err, ErrInvalidResponse) }, checkFn: "ErrInvalidResponse"},
		{name: "server error", status: 503, body: "down", check: func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 503 && apiErr.DOI == "10.1/x"
		}, checkFn: "APIError{503}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.GetWork(context.Background(), "10.1/x")
			if err == nil {
				t.Fatal("GetWork() expected error")
			}
			if !tt.check(err) {
				t.Errorf("GetWork() error = %v, want %s", err, tt.checkFn)
			}
		})
	}
}

func TestGetWork_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	obs := &recordingObserver{}
	c := NewClient(WithBaseURL(srv.URL), WithInterval(0), WithObserver(obs))
	_, err := c.GetWork(context.Background(), "10.1/x")
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("GetWork() error = %v, want ErrNetworkError", err)
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != "crossref:network_error" {
		t.Errorf("observed = %v", obs.statuses)
	}
}

func TestClient_IntervalPacesRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"message":{"DOI":"10.1/x"}}`)
	}, WithInterval(50*time.Millisecond))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.GetWork(context.Background(), "10.1/x"); err != nil {
			t.Fatalf("GetWork() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("3 paced requests took %v, want >= 100ms", elapsed)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"message":{}}`)
	}, WithInterval(time.Hour))

	// First request consumes the burst token.
	if _, err := c.GetWork(context.Background(), "10.1/x"); err != nil {
		t.Fatalf("GetWork() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetWork(ctx, "10.1/x")
	if err == nil || !strings.Contains(err.Error(), "rate limiter") {
		t.Errorf("GetWork() error = %v, want rate limiter error", err)
	}
}
