package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/instascholar/scholar/internal/config"
	"github.com/instascholar/scholar/internal/crossref"
	"github.com/instascholar/scholar/internal/docstore"
	"github.com/instascholar/scholar/internal/enrich"
	"github.com/instascholar/scholar/internal/europepmc"
	"github.com/instascholar/scholar/internal/metrics"
	"github.com/instascholar/scholar/internal/paper"
)

// services holds the clients one command run shares.
type services struct {
	crossref  *crossref.Client
	europepmc *europepmc.Client
	enricher  *enrich.Enricher
}

// newServices builds paced API clients from configuration. reg may be nil.
func newServices(w workspace, logger *slog.Logger, reg *metrics.Registry) services {
	crossrefOpts := []crossref.ClientOption{
		crossref.WithUserAgent("scholar/" + Version),
		crossref.WithMailto(w.global.Mailto),
		crossref.WithInterval(w.cfg.CrossrefDelay()),
		crossref.WithRows(w.cfg.PageRows),
		crossref.WithLogger(logger),
	}
	europepmcOpts := []europepmc.ClientOption{
		europepmc.WithInterval(w.cfg.EuropePMCDelay()),
		europepmc.WithLogger(logger),
	}
	if reg != nil {
		crossrefOpts = append(crossrefOpts, crossref.WithObserver(reg))
		europepmcOpts = append(europepmcOpts, europepmc.WithObserver(reg))
	}

	cr := crossref.NewClient(crossrefOpts...)
	epmc := europepmc.NewClient(europepmcOpts...)
	return services{
		crossref:  cr,
		europepmc: epmc,
		enricher:  enrich.New(epmc, cr, cr, enrich.WithLogger(logger)),
	}
}

// mustOpenStore opens the configured document store, exits with
// ExitConfigError if it is misconfigured or unreachable.
// The caller is responsible for calling Close() on the returned Store.
func mustOpenStore(ctx context.Context, w workspace, logger *slog.Logger) *docstore.Store {
	if err := config.ValidateStore(w.cfg, w.global); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	var backend docstore.Backend
	switch w.cfg.StoreBackend {
	case config.BackendMongo:
		b, err := docstore.OpenMongo(ctx, w.global.MongoURI, w.global.MongoDatabase)
		if err != nil {
			exitWithError(ExitConfigError, "opening mongo store: %v", err)
		}
		backend = b
	default:
		path := w.cfg.ResolvedSQLitePath(w.root)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			exitWithError(ExitConfigError, "creating store directory: %v", err)
		}
		b, err := docstore.OpenSQLite(path)
		if err != nil {
			exitWithError(ExitConfigError, "opening sqlite store: %v", err)
		}
		backend = b
	}

	return docstore.New(backend,
		docstore.WithLogger(logger),
		docstore.WithProtectedFields(paper.FieldDOI))
}

// mustNormalizeDOI validates a DOI argument and returns its normalized form.
func mustNormalizeDOI(arg string) string {
	doi := paper.NormalizeDOI(arg)
	if !paper.ValidDOI(doi) {
		exitWithError(ExitDataError, "invalid DOI: %s", arg)
	}
	return doi
}

// readRecord loads a stored record by DOI.
func readRecord(ctx context.Context, store *docstore.Store, collection, doi string) (*paper.PaperRecord, bool, error) {
	doc, ok, err := store.Read(ctx, collection, paper.DocumentKey(doi))
	if err != nil || !ok {
		return nil, ok, err
	}
	rec, err := paper.FromDocument(doc)
	if err != nil {
		return nil, false, fmt.Errorf("decoding stored record: %w", err)
	}
	return rec, true, nil
}

// stderrLogger logs to stderr when verbose, otherwise discards.
func stderrLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
