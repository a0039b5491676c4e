package crossref

import (
	"errors"
	"fmt"
)

// Common errors returned by the Crossref client.
var (
	// ErrNotFound indicates the DOI is unknown to Crossref.
	ErrNotFound = errors.New("not found in Crossref")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("Crossref rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Crossref")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Crossref")
)

// APIError represents a non-success HTTP status from the Crossref REST API.
type APIError struct {
	StatusCode int
	Message    string
	DOI        string // For context in work lookups
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("Crossref API error (status %d): %s (doi: %s)", e.StatusCode, e.Message, e.DOI)
	}
	return fmt.Sprintf("Crossref API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates the work was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
