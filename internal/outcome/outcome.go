// Package outcome models the result of a call across an external-service
// boundary: a value that was found, a recognized "no data" answer, or a
// failure that was logged and downgraded.
package outcome

import "fmt"

// Status classifies a Result.
type Status int

const (
	// StatusFound means the value was produced.
	StatusFound Status = iota
	// StatusAbsent means the service answered but had no data. Not an error.
	StatusAbsent
	// StatusFailed means a request or parse failure. Value may hold partial data.
	StatusFailed
)

// String returns the lower-case name used in logs and JSON output.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusAbsent:
		return "absent"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries a value together with how it was obtained.
type Result[T any] struct {
	Value  T
	Status Status
	Reason string // Why the value is absent (StatusAbsent only)
	Err    error  // Set only for StatusFailed
}

// Found wraps a successfully produced value.
func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusFound}
}

// Absent reports a recognized no-data outcome.
func Absent[T any](reason string) Result[T] {
	return Result[T]{Status: StatusAbsent, Reason: reason}
}

// Failed reports a failure. v may be a partial value (e.g. DOIs listed
// before pagination aborted) or the zero value.
func Failed[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Status: StatusFailed, Err: err}
}

// OK returns true if the value was found.
func (r Result[T]) OK() bool {
	return r.Status == StatusFound
}

// IsAbsent returns true for the soft no-data outcome.
func (r Result[T]) IsAbsent() bool {
	return r.Status == StatusAbsent
}

// IsFailed returns true if the call failed.
func (r Result[T]) IsFailed() bool {
	return r.Status == StatusFailed
}
