package main

import (
	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set workspace configuration values",
	Long: `Get or set workspace configuration values.

Usage:
  scholar config                              # Show all config
  scholar config store_backend                # Get specific value
  scholar config store_backend mongo          # Set value
  scholar config crossref_interval 500ms      # Set Crossref pacing

Keys:
  store_backend       sqlite or mongo
  sqlite_path         SQLite database path (relative to the workspace root)
  collection          Store collection for harvested papers
  log_dir             Directory for per-harvest log files
  crossref_interval   Delay between Crossref requests (Go duration)
  europepmc_interval  Delay between Europe PMC requests (Go duration)
  page_rows           Crossref works page size (1-1000)

MongoDB connection settings live in the global config
(~/.config/scholar/config.yml) or SCHOLAR_MONGO_URI.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	if len(args) == 0 {
		if humanOutput {
			for _, key := range config.Keys() {
				v, _ := cfg.Get(key)
				outputHuman("%-19s %s\n", key+":", v)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	if len(args) == 1 {
		v, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", v)
		} else {
			outputJSON(map[string]string{key: v})
		}
		return nil
	}

	if err := cfg.Set(key, args[1]); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Set %s = %s\n", key, args[1])
	} else {
		outputJSON(map[string]string{"status": "updated", "key": key, "value": args[1]})
	}
	return nil
}

// normalizeKey accepts dashed keys (store-backend) as well as underscored ones.
func normalizeKey(key string) string {
	out := []byte(key)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}
