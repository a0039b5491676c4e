package main

import (
	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/export"
	"github.com/instascholar/scholar/internal/paper"
)

var exportCmd = &cobra.Command{
	Use:   "export <doi>...",
	Short: "Export stored records as BibTeX",
	Long: `Print BibTeX entries for stored records. DOIs that are not stored are
reported on stderr and skipped.

Examples:
  scholar export 10.1126/science.abc1234 10.1038/s41586-020-2649-2 > refs.bib`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	dois := make([]string, len(args))
	for i, arg := range args {
		dois[i] = mustNormalizeDOI(arg)
	}
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	store := mustOpenStore(ctx, w, stderrLogger(false))
	defer store.Close()

	var recs []paper.PaperRecord
	var missing []string
	for _, doi := range dois {
		rec, ok, err := readRecord(ctx, store, w.collection(storeCollection), doi)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !ok {
			missing = append(missing, doi)
			continue
		}
		recs = append(recs, *rec)
	}

	for _, doi := range missing {
		cmd.PrintErrf("warning: no stored record for %s\n", doi)
	}
	if len(recs) == 0 {
		exitWithError(ExitNotFound, "none of the DOIs are stored")
	}
	outputHuman("%s", export.ToBibTeXList(recs))
	return nil
}
