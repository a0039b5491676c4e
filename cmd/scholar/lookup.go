package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

var (
	doisISSN    string
	doisStart   string
	doisEnd     string
	lookupDebug bool
)

func init() {
	doisCmd.Flags().StringVar(&doisISSN, "issn", "", "Journal ISSN (required)")
	doisCmd.Flags().StringVar(&doisStart, "start-date", "", "First publication date, YYYY-MM-DD (required)")
	doisCmd.Flags().StringVar(&doisEnd, "end-date", "", "Last publication date, YYYY-MM-DD (required)")
	doisCmd.MarkFlagRequired("issn")
	doisCmd.MarkFlagRequired("start-date")
	doisCmd.MarkFlagRequired("end-date")

	for _, c := range []*cobra.Command{doisCmd, journalCmd, refsCmd} {
		c.Flags().BoolVar(&lookupDebug, "verbose", false, "Log requests to stderr")
		rootCmd.AddCommand(c)
	}
}

var doisCmd = &cobra.Command{
	Use:   "dois",
	Short: "List the DOIs a journal published over a date range",
	Long: `List DOIs from Crossref works search, following the deep-paging cursor
until a page returns no DOIs.

If a page fails, the DOIs listed before it are printed and the command exits
with an API error code.

Examples:
  scholar dois --issn 0036-8075 --start-date 2020-01-01 --end-date 2020-01-31`,
	Args: cobra.NoArgs,
	RunE: runDOIs,
}

func runDOIs(cmd *cobra.Command, args []string) error {
	if err := paper.ValidateDateRange(doisStart, doisEnd); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	svc := newServices(w, stderrLogger(lookupDebug), nil)
	res := svc.crossref.ListDOIs(ctx, doisISSN, doisStart, doisEnd)

	if humanOutput {
		for _, doi := range res.Value.DOIs {
			outputHuman("%s\n", doi)
		}
		outputHuman("%d DOIs\n", len(res.Value.DOIs))
	} else {
		outputJSON(DOIsResponse{
			ISSN:      res.Value.ISSN,
			StartDate: res.Value.StartDate,
			EndDate:   res.Value.EndDate,
			Count:     len(res.Value.DOIs),
			DOIs:      res.Value.DOIs,
			Error:     errorText(res.Err),
		})
	}
	if res.IsFailed() {
		exitWithError(ExitAPIError, "listing stopped early: %v", res.Err)
	}
	return nil
}

// DOIsResponse is the JSON output of dois.
type DOIsResponse struct {
	ISSN      string   `json:"issn"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Count     int      `json:"count"`
	DOIs      []string `json:"dois"`
	Error     string   `json:"error,omitempty"`
}

var journalCmd = &cobra.Command{
	Use:   "journal <doi>",
	Short: "Resolve the journal of a DOI",
	Long: `Look up a DOI's ISSN and journal name in Crossref.

The print ISSN is preferred when the record types its ISSNs.`,
	Args: cobra.ExactArgs(1),
	RunE: runJournal,
}

func runJournal(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	svc := newServices(w, stderrLogger(lookupDebug), nil)
	res := svc.crossref.ResolveJournal(ctx, doi)
	exitOnResult(res.Status, res.Err, "journal for "+doi)

	if humanOutput {
		outputHuman("ISSN:    %s\n", paper.Deref(res.Value.ISSN))
		outputHuman("Journal: %s\n", paper.Deref(res.Value.Name))
	} else {
		outputJSON(res.Value)
	}
	return nil
}

var refsCmd = &cobra.Command{
	Use:   "refs <doi>",
	Short: "List the reference DOIs of a DOI",
	Long: `List the DOIs cited by a work, from its Crossref reference list.

References without a DOI are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefs,
}

func runRefs(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	svc := newServices(w, stderrLogger(lookupDebug), nil)
	res := svc.crossref.FetchReferences(ctx, doi)
	exitOnResult(res.Status, res.Err, "references for "+doi)

	if humanOutput {
		outputHuman("%s\n", strings.Join(res.Value, "\n"))
		outputHuman("%d references\n", len(res.Value))
	} else {
		outputJSON(map[string]any{"doi": doi, "count": len(res.Value), "references": res.Value})
	}
	return nil
}

// exitOnResult exits for failed or absent lookups.
func exitOnResult(status outcome.Status, err error, what string) {
	switch status {
	case outcome.StatusFailed:
		exitWithError(ExitAPIError, "fetching %s: %v", what, err)
	case outcome.StatusAbsent:
		exitWithError(ExitNotFound, "no %s", what)
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
