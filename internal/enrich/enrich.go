// Package enrich composes a PaperRecord for a DOI from Europe PMC metadata
// and Crossref journal and reference data.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/instascholar/scholar/internal/europepmc"
	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

// AbstractSource looks up a DOI in a full-text search service.
// A nil result with a nil error means the service has no record.
type AbstractSource interface {
	SearchDOI(ctx context.Context, doi string) (*europepmc.Result, error)
}

// JournalResolver resolves the journal of a DOI.
type JournalResolver interface {
	ResolveJournal(ctx context.Context, doi string) outcome.Result[paper.JournalInfo]
}

// ReferenceFetcher fetches the reference DOIs of a DOI.
type ReferenceFetcher interface {
	FetchReferences(ctx context.Context, doi string) outcome.Result[[]string]
}

// Enricher builds PaperRecords.
type Enricher struct {
	abstracts  AbstractSource
	journals   JournalResolver
	references ReferenceFetcher
	logger     *slog.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithLogger sets the logger for enrichment outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Enricher.
func New(abstracts AbstractSource, journals JournalResolver, references ReferenceFetcher, opts ...Option) *Enricher {
	e := &Enricher{
		abstracts:  abstracts,
		journals:   journals,
		references: references,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fetches and merges the metadata for one DOI.
//
// No Europe PMC record yields an absent result. Journal and reference lookups
// are soft: their failures leave the corresponding fields empty. Any failure
// or panic while building the record is logged and returned as a failed result.
func (e *Enricher) Enrich(ctx context.Context, doi string) (res outcome.Result[*paper.PaperRecord]) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("enriching %s: panic: %v", doi, r)
			e.logger.Error("error processing DOI", "doi", doi, "error", err)
			res = outcome.Failed[*paper.PaperRecord](nil, err)
		}
	}()

	hit, err := e.abstracts.SearchDOI(ctx, doi)
	if err != nil {
		e.logger.Error("error processing DOI", "doi", doi, "error", err)
		return outcome.Failed[*paper.PaperRecord](nil, fmt.Errorf("searching abstract for %s: %w", doi, err))
	}
	if hit == nil {
		e.logger.Info("no data found for DOI", "doi", doi)
		return outcome.Absent[*paper.PaperRecord]("no full-text search result")
	}
	e.logger.Info("abstract found for DOI", "doi", doi)

	rec := RecordFromResult(doi, hit)

	if journal := e.journals.ResolveJournal(ctx, doi); journal.OK() {
		rec.ISSN = journal.Value.ISSN
		rec.Journal = journal.Value.Name
	}

	refs := e.references.FetchReferences(ctx, doi)
	rec.References = refs.Value
	if rec.References == nil {
		rec.References = []string{}
	}
	e.logger.Info("processed references", "doi", doi, "count", len(rec.References))

	return outcome.Found(rec)
}

// RecordFromResult maps a Europe PMC hit to a record. Blank fields are absent,
// and a citation count that is not an integer is absent.
func RecordFromResult(doi string, r *europepmc.Result) *paper.PaperRecord {
	return &paper.PaperRecord{
		DOI:             paper.NormalizeDOI(doi),
		Title:           text(r.Title),
		Author:          text(r.AuthorString),
		Abstract:        text(r.AbstractText),
		Affiliation:     text(r.Affiliation),
		CitationCount:   count(r.CitedByCount),
		PublicationDate: text(r.FirstPublicationDate),
		References:      []string{},
	}
}

func text(s string) *string {
	return paper.StringPtr(strings.TrimSpace(s))
}

func count(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
