package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/metrics"
	"github.com/instascholar/scholar/internal/paper"
	"github.com/instascholar/scholar/internal/pipeline"
	"github.com/instascholar/scholar/internal/runlog"
)

var (
	harvestISSN       string
	harvestStart      string
	harvestEnd        string
	harvestOverride   bool
	harvestCollection string
	harvestVerbose    bool
)

func init() {
	harvestCmd.Flags().StringVar(&harvestISSN, "issn", "", "Journal ISSN (required)")
	harvestCmd.Flags().StringVar(&harvestStart, "start-date", "", "First publication date, YYYY-MM-DD (required)")
	harvestCmd.Flags().StringVar(&harvestEnd, "end-date", "", "Last publication date, YYYY-MM-DD (required)")
	harvestCmd.Flags().BoolVar(&harvestOverride, "override", false, "Re-fetch and replace papers already in the store")
	harvestCmd.Flags().StringVar(&harvestCollection, "collection", "", "Store collection (default from config)")
	harvestCmd.Flags().BoolVar(&harvestVerbose, "verbose", false, "Also write the run log to stderr")
	harvestCmd.MarkFlagRequired("issn")
	harvestCmd.MarkFlagRequired("start-date")
	harvestCmd.MarkFlagRequired("end-date")
	rootCmd.AddCommand(harvestCmd)
}

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest a journal's papers over a date range",
	Long: `List every DOI a journal published between two dates, enrich each one
with Europe PMC and Crossref metadata, and upsert the records.

Papers already in the store are skipped unless --override is given. Every
fetch outcome is logged to <log_dir>/<issn>_<start>_<end>.log.

Examples:
  scholar harvest --issn 0036-8075 --start-date 2020-01-01 --end-date 2020-01-31
  scholar harvest --issn 0028-0836 --start-date 2023-01-01 --end-date 2023-12-31 --override --human`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if err := paper.ValidateDateRange(harvestStart, harvestEnd); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	opts := runlog.Options{Level: slog.LevelInfo}
	if harvestVerbose {
		opts.Tee = os.Stderr
	}
	run, err := runlog.Open(w.cfg.ResolvedLogDir(w.root), harvestISSN, harvestStart, harvestEnd, opts)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	defer run.Close()

	store := mustOpenStore(ctx, w, run.Logger)
	defer store.Close()

	reg := metrics.New()
	svc := newServices(w, run.Logger, reg)
	p := pipeline.New(svc.crossref, svc.enricher, store,
		pipeline.WithLogger(run.Logger),
		pipeline.WithRecorder(reg))

	job := pipeline.Job{
		ISSN:       harvestISSN,
		StartDate:  harvestStart,
		EndDate:    harvestEnd,
		Override:   harvestOverride,
		Collection: w.collection(harvestCollection),
	}
	report := p.Run(ctx, job)

	reg.MarkFinished(time.Now())
	exportMetrics(w, reg, run.Logger, harvestISSN)

	if humanOutput {
		printReportHuman(report, run.Path)
	} else {
		outputJSON(HarvestResponse{Report: report, RunID: run.ID, LogFile: run.Path})
	}

	if report.ListError != "" && report.Listed == 0 {
		run.Close()
		os.Exit(ExitAPIError)
	}
	return nil
}

// HarvestResponse is the JSON output of harvest.
type HarvestResponse struct {
	pipeline.Report
	RunID   string `json:"run_id"`
	LogFile string `json:"log_file"`
}

// exportMetrics writes the textfile and pushes to the gateway when configured.
// Failures are logged and never fail the harvest.
func exportMetrics(w workspace, reg *metrics.Registry, logger *slog.Logger, issn string) {
	if path := w.global.MetricsTextfile; path != "" {
		if err := reg.WriteTextfile(path); err != nil {
			logger.Warn("metrics textfile not written", "path", path, "error", err)
		}
	}
	if url := w.global.PushgatewayURL; url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reg.Push(ctx, url, issn); err != nil {
			logger.Warn("metrics not pushed", "url", url, "error", err)
		}
	}
}

func printReportHuman(r pipeline.Report, logPath string) {
	outputHuman("Harvest %s %s..%s (collection %s)\n", r.Job.ISSN, r.Job.StartDate, r.Job.EndDate, r.Job.Collection)
	outputHuman("  Listed:   %d\n", r.Listed)
	if r.ListError != "" {
		outputHuman("  Listing stopped early: %s\n", r.ListError)
	}
	outputHuman("  Written:  %d\n", r.Written)
	outputHuman("  Skipped:  %d\n", r.Skipped)
	outputHuman("  No data:  %d\n", r.NoData)
	outputHuman("  Failed:   %d\n", r.Failed)
	for _, p := range r.Papers {
		if p.Action == pipeline.ActionFailed {
			outputHuman("    %s: %s\n", p.DOI, p.Error)
		}
	}
	outputHuman("Log: %s\n", logPath)
	if r.Listed == 0 && r.ListError == "" {
		fmt.Println("No papers found.")
	}
}
