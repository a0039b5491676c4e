// Package pipeline harvests the papers of one journal over a date range:
// list DOIs, enrich each one, and upsert the records.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/instascholar/scholar/internal/docstore"
	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

// DefaultCollection is the store collection papers are written to.
const DefaultCollection = "papers"

// Lister lists the DOIs of a journal.
type Lister interface {
	ListDOIs(ctx context.Context, issn, startDate, endDate string) outcome.Result[paper.DoiBatch]
}

// Enricher builds the record for one DOI.
type Enricher interface {
	Enrich(ctx context.Context, doi string) outcome.Result[*paper.PaperRecord]
}

// Store is the subset of docstore.Store the pipeline writes through.
type Store interface {
	Exists(ctx context.Context, collection, key string) (bool, error)
	Write(ctx context.Context, collection, key string, doc docstore.Document, override bool) (docstore.WriteAction, error)
}

// Recorder counts per-paper outcomes.
type Recorder interface {
	ObservePaper(action string)
}

// Per-paper actions.
const (
	ActionSkipped = "skipped"
	ActionWritten = "written"
	ActionNoData  = "no_data"
	ActionFailed  = "failed"
)

// Job describes one harvest.
type Job struct {
	ISSN       string `json:"issn"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Override   bool   `json:"override"`
	Collection string `json:"collection"`
}

// PaperResult is the outcome for one DOI.
type PaperResult struct {
	DOI    string `json:"doi"`
	Key    string `json:"key"`
	Action string `json:"action"`
	Write  string `json:"write,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes a harvest.
type Report struct {
	Job       Job           `json:"job"`
	Listed    int           `json:"listed"`
	ListError string        `json:"list_error,omitempty"`
	Papers    []PaperResult `json:"papers"`
	Written   int           `json:"written"`
	Skipped   int           `json:"skipped"`
	NoData    int           `json:"no_data"`
	Failed    int           `json:"failed"`
}

func (r *Report) add(p PaperResult) {
	r.Papers = append(r.Papers, p)
	switch p.Action {
	case ActionWritten:
		r.Written++
	case ActionSkipped:
		r.Skipped++
	case ActionNoData:
		r.NoData++
	case ActionFailed:
		r.Failed++
	}
}

// Pipeline runs harvests.
type Pipeline struct {
	lister   Lister
	enricher Enricher
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New creates a Pipeline.
func New(lister Lister, enricher Enricher, store Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		lister:   lister,
		enricher: enricher,
		store:    store,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run harvests job. Papers are processed one at a time in listing order; a
// failure on one DOI is recorded and processing moves on. If listing aborts
// part way, the DOIs listed before the failure are still processed.
func (p *Pipeline) Run(ctx context.Context, job Job) Report {
	if job.Collection == "" {
		job.Collection = DefaultCollection
	}
	report := Report{Job: job, Papers: []PaperResult{}}
	log := p.logger.With("issn", job.ISSN)

	listing := p.lister.ListDOIs(ctx, job.ISSN, job.StartDate, job.EndDate)
	if listing.IsFailed() && listing.Err != nil {
		report.ListError = listing.Err.Error()
	}
	dois := listing.Value.DOIs
	report.Listed = len(dois)

	if len(dois) == 0 {
		log.Info("no papers found", "start_date", job.StartDate, "end_date", job.EndDate)
		return report
	}
	log.Info("processing papers", "count", len(dois), "override", job.Override)

	for _, doi := range dois {
		if ctx.Err() != nil {
			log.Warn("harvest cancelled", "processed", len(report.Papers), "error", ctx.Err())
			break
		}
		result := p.process(ctx, log, job, doi)
		report.add(result)
		if p.recorder != nil {
			p.recorder.ObservePaper(result.Action)
		}
	}

	log.Info("harvest finished",
		"written", report.Written, "skipped", report.Skipped,
		"no_data", report.NoData, "failed", report.Failed)
	return report
}

func (p *Pipeline) process(ctx context.Context, log *slog.Logger, job Job, doi string) PaperResult {
	key := paper.DocumentKey(doi)
	result := PaperResult{DOI: doi, Key: key}
	log = log.With("doi", doi)

	if !job.Override {
		exists, err := p.store.Exists(ctx, job.Collection, key)
		if err != nil {
			log.Error("existence check failed", "error", err)
			result.Action = ActionFailed
			result.Error = err.Error()
			return result
		}
		if exists {
			log.Info("paper already stored, skipping")
			result.Action = ActionSkipped
			return result
		}
	}

	enriched := p.enricher.Enrich(ctx, doi)
	switch enriched.Status {
	case outcome.StatusAbsent:
		result.Action = ActionNoData
		return result
	case outcome.StatusFailed:
		result.Action = ActionFailed
		if enriched.Err != nil {
			result.Error = enriched.Err.Error()
		}
		return result
	}

	doc, err := paper.ToDocument(*enriched.Value)
	if err != nil {
		log.Error("encoding record failed", "error", err)
		result.Action = ActionFailed
		result.Error = err.Error()
		return result
	}

	action, err := p.store.Write(ctx, job.Collection, key, doc, job.Override)
	if err != nil {
		log.Error("storing paper failed", "error", err)
		result.Action = ActionFailed
		result.Error = err.Error()
		return result
	}
	result.Write = action.String()
	if action == docstore.Skipped {
		result.Action = ActionSkipped
	} else {
		result.Action = ActionWritten
	}
	return result
}
