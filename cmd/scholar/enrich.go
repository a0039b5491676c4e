package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/docstore"
	"github.com/instascholar/scholar/internal/paper"
)

var (
	enrichStore      bool
	enrichOverride   bool
	enrichCollection string
	enrichVerbose    bool
)

func init() {
	enrichCmd.Flags().BoolVar(&enrichStore, "store", false, "Upsert the record into the store")
	enrichCmd.Flags().BoolVar(&enrichOverride, "override", false, "Replace an existing stored record (with --store)")
	enrichCmd.Flags().StringVar(&enrichCollection, "collection", "", "Store collection (default from config)")
	enrichCmd.Flags().BoolVar(&enrichVerbose, "verbose", false, "Log requests to stderr")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <doi>",
	Short: "Build the paper record for one DOI",
	Long: `Fetch a DOI's metadata from Europe PMC and its journal and references
from Crossref, and print the merged record.

With --store the record is also upserted; an existing record is kept unless
--override is given.

Examples:
  scholar enrich 10.1126/science.abc1234 --human
  scholar enrich https://doi.org/10.1038/s41586-020-2649-2 --store`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	logger := stderrLogger(enrichVerbose)
	svc := newServices(w, logger, nil)

	if !enrichStore {
		rec := mustEnrich(ctx, svc, doi)
		printRecord(rec)
		return nil
	}

	store := mustOpenStore(ctx, w, logger)
	defer store.Close()
	rec, action := enrichAndStore(ctx, svc, store, logger, w.collection(enrichCollection), doi, enrichOverride)
	printStored(rec, action)
	return nil
}

func mustEnrich(ctx context.Context, svc services, doi string) *paper.PaperRecord {
	res := svc.enricher.Enrich(ctx, doi)
	exitOnResult(res.Status, res.Err, "Europe PMC record for "+doi)
	return res.Value
}

// enrichAndStore enriches doi and upserts the record. An existing record with
// override unset is returned without fetching anything.
func enrichAndStore(ctx context.Context, svc services, store *docstore.Store, logger *slog.Logger, collection, doi string, override bool) (*paper.PaperRecord, docstore.WriteAction) {
	key := paper.DocumentKey(doi)
	if !override {
		existing, ok, err := readRecord(ctx, store, collection, doi)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if ok {
			logger.Info("paper already stored, skipping", "doi", doi)
			return existing, docstore.Skipped
		}
	}

	res := svc.enricher.Enrich(ctx, doi)
	exitOnResult(res.Status, res.Err, "Europe PMC record for "+doi)

	doc, err := paper.ToDocument(*res.Value)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	action, err := store.Write(ctx, collection, key, doc, override)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return res.Value, action
}

// StoredResponse reports an upsert together with the record.
type StoredResponse struct {
	Action string             `json:"action"`
	Key    string             `json:"key"`
	Record *paper.PaperRecord `json:"record"`
}

func printStored(rec *paper.PaperRecord, action docstore.WriteAction) {
	if humanOutput {
		outputHuman("[%s] ", action)
		printRecord(rec)
		return
	}
	outputJSON(StoredResponse{Action: action.String(), Key: paper.DocumentKey(rec.DOI), Record: rec})
}

