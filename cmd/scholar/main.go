// Package main provides the scholar CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (like missing required flags) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scholar",
	Short: "Harvest journal papers by DOI",
	Long: `scholar harvests bibliographic records for the papers a journal
published over a date range.

For each DOI listed by Crossref it fetches the title, authors, abstract,
affiliation and citation count from Europe PMC, the journal and reference
list from Crossref, and upserts the record into a document store (SQLite by
default, MongoDB optionally).

All commands output JSON by default. Use --human for readable output.

Environment Variables:
  SCHOLAR_ROOT             Workspace root (skips directory walk-up)
  SCHOLAR_MAILTO           Contact email for the Crossref polite pool
  SCHOLAR_MONGO_URI        MongoDB connection string
  SCHOLAR_MONGO_DATABASE   MongoDB database name
  SCHOLAR_PUSHGATEWAY_URL  Prometheus Pushgateway for harvest metrics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for SCHOLAR_* variables)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustFindWorkspace finds the workspace root, exits on error.
func mustFindWorkspace() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindWorkspace(cwd)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'scholar init' to create a workspace.", err)
	}
	return root
}

// mustLoadConfig loads workspace configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadGlobalConfig loads the global configuration, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	global, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return global
}

// workspace bundles what most commands need.
type workspace struct {
	root   string
	cfg    *config.Config
	global *config.GlobalConfig
}

func mustLoadWorkspace() workspace {
	root := mustFindWorkspace()
	return workspace{
		root:   root,
		cfg:    mustLoadConfig(root),
		global: mustLoadGlobalConfig(),
	}
}

// collectionFlag returns the flag value if set, else the configured collection.
func (w workspace) collection(flag string) string {
	if flag != "" {
		return flag
	}
	return w.cfg.Collection
}
