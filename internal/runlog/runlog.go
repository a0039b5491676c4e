// Package runlog creates the per-harvest log file.
package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Run is an open harvest log.
type Run struct {
	ID     string
	Path   string
	Logger *slog.Logger
	file   *os.File
}

// Options tune how a run log is opened.
type Options struct {
	// Tee also writes records to this writer (stderr for --verbose).
	Tee   io.Writer
	Level slog.Level
}

// FileName returns the log file name for a harvest.
func FileName(issn, startDate, endDate string) string {
	return fmt.Sprintf("%s_%s_%s.log", sanitize(issn), sanitize(startDate), sanitize(endDate))
}

// Open creates (or truncates) <dir>/<issn>_<start>_<end>.log and returns a
// logger writing to it. Every record carries the run's id.
func Open(dir, issn, startDate, endDate string, opts Options) (*Run, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(dir, FileName(issn, startDate, endDate))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	var w io.Writer = f
	if opts.Tee != nil {
		w = io.MultiWriter(f, opts.Tee)
	}
	id := uuid.NewString()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level})
	logger := slog.New(handler).With("run_id", id)

	return &Run{ID: id, Path: path, Logger: logger, file: f}, nil
}

// Close flushes and closes the log file.
func (r *Run) Close() error {
	if err := r.file.Sync(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '-'
		}
		return r
	}, s)
}
