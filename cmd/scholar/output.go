package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/instascholar/scholar/internal/paper"
)

// Text wrapping width for abstracts in human output
const TextWrapWidth = 72

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is the JSON shape of a failed command.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Key    string `json:"key,omitempty"`
}

// printRecord prints a paper record as JSON or a readable summary.
func printRecord(rec *paper.PaperRecord) {
	if !humanOutput {
		outputJSON(rec)
		return
	}
	outputHuman("%s\n", rec.DOI)
	printField("Title", rec.Title)
	printField("Authors", rec.Author)
	printField("Affiliation", rec.Affiliation)
	printField("Journal", rec.Journal)
	printField("ISSN", rec.ISSN)
	printField("Published", rec.PublicationDate)
	if rec.CitationCount != nil {
		outputHuman("  %-12s %d\n", "Citations:", *rec.CitationCount)
	}
	outputHuman("  %-12s %d\n", "References:", len(rec.References))
	if rec.IngestedAt != nil {
		outputHuman("  %-12s %s\n", "Ingested:", rec.IngestedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if rec.Abstract != nil {
		outputHuman("\n%s\n", wrapText(*rec.Abstract, TextWrapWidth, "  "))
	}
}

func printField(label string, v *string) {
	if v == nil {
		return
	}
	outputHuman("  %-12s %s\n", label+":", *v)
}

// wrapText wraps text at width, prefixing each line with indent.
func wrapText(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := indent + words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = indent + w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
