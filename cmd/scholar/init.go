package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a scholar workspace in the current directory",
	Long: `Create a .scholar directory with a default config.json.

The default store is a SQLite database at .scholar/papers.db and harvest logs
go to .scholar/logs. Use 'scholar config' to change either.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if _, err := config.Init(cwd); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Initialized scholar workspace in %s\n", config.ScholarPath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.ScholarPath(cwd)})
	}
	return nil
}
