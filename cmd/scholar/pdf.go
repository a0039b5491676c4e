package main

import (
	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/pdf"
)

var (
	pdfOverride   bool
	pdfCollection string
	pdfPages      int
	pdfNoStore    bool
)

func init() {
	pdfCmd.Flags().BoolVar(&pdfOverride, "override", false, "Replace an existing stored record")
	pdfCmd.Flags().StringVar(&pdfCollection, "collection", "", "Store collection (default from config)")
	pdfCmd.Flags().IntVar(&pdfPages, "pages", pdf.DefaultMaxPages, "Number of leading pages to search for a DOI")
	pdfCmd.Flags().BoolVar(&pdfNoStore, "no-store", false, "Only print the DOI found in the PDF")
	rootCmd.AddCommand(pdfCmd)
}

var pdfCmd = &cobra.Command{
	Use:   "pdf <file>",
	Short: "Find the DOI in a paper's PDF and store its record",
	Long: `Search the first pages of a PDF for a DOI, enrich it and upsert the
record, as 'scholar enrich --store' would.

Examples:
  scholar pdf ~/Downloads/paper.pdf
  scholar pdf paper.pdf --no-store`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

func runPDF(cmd *cobra.Command, args []string) error {
	doi, err := pdf.ExtractDOI(args[0], pdfPages)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if doi == "" {
		exitWithError(ExitNotFound, "no DOI found in %s", args[0])
	}

	if pdfNoStore {
		if humanOutput {
			outputHuman("%s\n", doi)
		} else {
			outputJSON(map[string]string{"file": args[0], "doi": doi})
		}
		return nil
	}

	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	logger := stderrLogger(false)
	svc := newServices(w, logger, nil)
	store := mustOpenStore(ctx, w, logger)
	defer store.Close()

	rec, action := enrichAndStore(ctx, svc, store, logger, w.collection(pdfCollection), doi, pdfOverride)
	printStored(rec, action)
	return nil
}
