package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/instascholar/scholar/internal/paper"
)

var storeCollection string

func init() {
	for _, c := range []*cobra.Command{getCmd, deleteCmd, setCmd, exportCmd} {
		c.Flags().StringVar(&storeCollection, "collection", "", "Store collection (default from config)")
		rootCmd.AddCommand(c)
	}
}

var getCmd = &cobra.Command{
	Use:   "get <doi>",
	Short: "Show a stored paper record",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	store := mustOpenStore(ctx, w, stderrLogger(false))
	defer store.Close()

	rec, ok, err := readRecord(ctx, store, w.collection(storeCollection), doi)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !ok {
		exitWithError(ExitNotFound, "no stored record for %s", doi)
	}
	printRecord(rec)
	return nil
}

var deleteCmd = &cobra.Command{
	Use:   "delete <doi>",
	Short: "Delete a stored paper record",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	store := mustOpenStore(ctx, w, stderrLogger(true))
	defer store.Close()

	key := paper.DocumentKey(doi)
	if !store.Delete(ctx, w.collection(storeCollection), key) {
		exitWithError(ExitNotFound, "no stored record deleted for %s", doi)
	}
	if humanOutput {
		outputHuman("Deleted %s\n", doi)
	} else {
		outputJSON(StatusResponse{Status: "deleted", Key: key})
	}
	return nil
}

var setCmd = &cobra.Command{
	Use:   "set <doi> <field> <value>",
	Short: "Update one field of a stored paper record",
	Long: `Update one field of an existing record. Nothing is created when the DOI
is not stored.

The value is parsed as JSON when possible (numbers, null, arrays), otherwise
stored as a string. The doi and ingested_at fields cannot be changed.

Examples:
  scholar set 10.1126/science.abc1234 citation_count 57
  scholar set 10.1126/science.abc1234 journal "Science Advances"`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	doi := mustNormalizeDOI(args[0])
	field, raw := args[1], args[2]
	w := mustLoadWorkspace()
	ctx, cancel := signalContext()
	defer cancel()

	store := mustOpenStore(ctx, w, stderrLogger(false))
	defer store.Close()

	key := paper.DocumentKey(doi)
	ok, err := store.UpdateField(ctx, w.collection(storeCollection), key, field, parseValue(raw))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if !ok {
		exitWithError(ExitNotFound, "no stored record for %s", doi)
	}
	if humanOutput {
		outputHuman("Set %s on %s\n", field, doi)
	} else {
		outputJSON(StatusResponse{Status: "updated", Key: key})
	}
	return nil
}

// parseValue decodes raw as JSON, falling back to the literal string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
