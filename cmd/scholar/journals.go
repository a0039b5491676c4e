package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/config"
	"github.com/instascholar/scholar/internal/crossref"
	"github.com/instascholar/scholar/internal/scimago"
)

// Pause between Crossref title searches during a scrape.
const titleLookupInterval = 500 * time.Millisecond

var (
	scrapeYear    int
	scrapeMax     int
	scrapeOut     string
	scrapeNoISSN  bool
	scrapeVerbose bool

	mappingCSV string
	mappingOut string
)

func init() {
	journalsScrapeCmd.Flags().IntVar(&scrapeYear, "year", 2023, "Ranking year")
	journalsScrapeCmd.Flags().IntVar(&scrapeMax, "max", scimago.DefaultMaxJournals, "Maximum number of journals")
	journalsScrapeCmd.Flags().StringVar(&scrapeOut, "out", "top_journals.csv", "Output CSV path")
	journalsScrapeCmd.Flags().BoolVar(&scrapeNoISSN, "no-issn", false, "Skip the Crossref ISSN lookup")
	journalsScrapeCmd.Flags().BoolVar(&scrapeVerbose, "verbose", false, "Log progress to stderr")

	journalsMappingCmd.Flags().StringVar(&mappingCSV, "csv", "top_journals.csv", "Journal CSV written by 'journals scrape'")
	journalsMappingCmd.Flags().StringVar(&mappingOut, "out", "issn_journal.json", "Output JSON path")

	journalsCmd.AddCommand(journalsScrapeCmd, journalsMappingCmd)
	rootCmd.AddCommand(journalsCmd)
}

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "Build journal lists to harvest from",
}

var journalsScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the Scimago journal rankings to CSV",
	Long: `Scrape the Scimago journal rankings for a year and write them to CSV,
adding an ISSN column found by Crossref container-title search.

Ranking pages are fetched 2s apart and ISSN lookups 0.5s apart. The command
does not need a workspace.

Examples:
  scholar journals scrape --year 2023 --max 2000 --out data/top_journals.csv`,
	Args: cobra.NoArgs,
	RunE: runJournalsScrape,
}

func runJournalsScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()
	logger := stderrLogger(scrapeVerbose)

	scraper := scimago.NewScraper(scimago.WithLogger(logger))
	table, err := scraper.Scrape(ctx, scrapeYear, scrapeMax)
	if err != nil {
		exitWithError(ExitAPIError, "%v", err)
	}

	withISSN := 0
	if !scrapeNoISSN {
		global := mustLoadGlobalConfig()
		client := crossref.NewClient(
			crossref.WithUserAgent("scholar/"+Version),
			crossref.WithMailto(global.Mailto),
			crossref.WithInterval(titleLookupInterval),
			crossref.WithLogger(logger),
		)
		withISSN, err = scimago.AddISSNs(ctx, table, client, logger)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	f, err := os.Create(config.ExpandPath(scrapeOut))
	if err != nil {
		exitWithError(ExitError, "creating %s: %v", scrapeOut, err)
	}
	defer f.Close()
	if err := scimago.WriteCSV(f, table); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Wrote %d journals (%d with ISSN) to %s\n", len(table.Rows), withISSN, scrapeOut)
	} else {
		outputJSON(map[string]any{"path": scrapeOut, "journals": len(table.Rows), "with_issn": withISSN})
	}
	return nil
}

var journalsMappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Write an ISSN to journal title JSON mapping",
	Long: `Read a journal CSV and write a JSON object mapping each ISSN to its
journal title. Rows without an ISSN are dropped.`,
	Args: cobra.NoArgs,
	RunE: runJournalsMapping,
}

func runJournalsMapping(cmd *cobra.Command, args []string) error {
	f, err := os.Open(config.ExpandPath(mappingCSV))
	if err != nil {
		exitWithError(ExitError, "opening %s: %v", mappingCSV, err)
	}
	defer f.Close()

	table, err := scimago.ReadCSV(f)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	mapping, err := scimago.Mapping(table)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		exitWithError(ExitError, "encoding mapping: %v", err)
	}
	if err := os.WriteFile(config.ExpandPath(mappingOut), data, 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", mappingOut, err)
	}

	if humanOutput {
		fmt.Printf("Wrote %d ISSNs to %s\n", len(mapping), mappingOut)
	} else {
		outputJSON(map[string]any{"path": mappingOut, "issns": len(mapping)})
	}
	return nil
}
