// Package export provides functions to export paper records to various formats.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/instascholar/scholar/internal/paper"
)

// ToBibTeX converts a paper record to a BibTeX entry.
func ToBibTeX(rec paper.PaperRecord) string {
	entryType := determineEntryType(paper.Deref(rec.Journal))
	year, month := splitDate(paper.Deref(rec.PublicationDate))
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, CiteKey(rec))

	if authors := parseAuthors(paper.Deref(rec.Author)); len(authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(authors, " and "))
	}

	if rec.Title != nil {
		fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(strings.TrimSuffix(*rec.Title, ".")))
	}

	if rec.Journal != nil {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(*rec.Journal))
	}

	if year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", year)
	}
	if month > 0 {
		fmt.Fprintf(&b, "  month = {%d},\n", month)
	}

	if rec.ISSN != nil {
		fmt.Fprintf(&b, "  issn = {%s},\n", *rec.ISSN)
	}

	fmt.Fprintf(&b, "  doi = {%s},\n", rec.DOI)

	if rec.Abstract != nil {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(*rec.Abstract))
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts multiple records to BibTeX format.
func ToBibTeXList(recs []paper.PaperRecord) string {
	var entries []string
	for _, rec := range recs {
		entries = append(entries, ToBibTeX(rec))
	}
	return strings.Join(entries, "\n")
}

// CiteKey builds a key from the first author's surname and the year, e.g.
// Smith2020. Records without an author or date fall back to the DOI key.
func CiteKey(rec paper.PaperRecord) string {
	authors := parseAuthors(paper.Deref(rec.Author))
	year, _ := splitDate(paper.Deref(rec.PublicationDate))
	if len(authors) == 0 || year == 0 {
		return paper.DocumentKey(rec.DOI)
	}
	surname, _, _ := strings.Cut(authors[0], ",")
	var clean strings.Builder
	for _, r := range surname {
		if unicode.IsLetter(r) {
			clean.WriteRune(r)
		}
	}
	if clean.Len() == 0 {
		return paper.DocumentKey(rec.DOI)
	}
	return fmt.Sprintf("%s%d", clean.String(), year)
}

// determineEntryType returns the BibTeX entry type for a venue.
func determineEntryType(venue string) string {
	venue = strings.ToLower(venue)

	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}

	return "article"
}

// parseAuthors turns a Europe PMC author string ("Smith J, Doe AB.") into
// BibTeX names ("Smith, J"). A name without initials is kept as-is.
func parseAuthors(s string) []string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if s == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx := strings.LastIndex(part, " ")
		if idx < 0 || !isInitials(part[idx+1:]) {
			names = append(names, escapeLatex(part))
			continue
		}
		names = append(names, escapeLatex(part[:idx]+", "+part[idx+1:]))
	}
	return names
}

func isInitials(s string) bool {
	if s == "" || len(s) > 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// splitDate extracts year and month from YYYY, YYYY-MM or YYYY-MM-DD.
func splitDate(date string) (year, month int) {
	parts := strings.Split(date, "-")
	if len(parts) == 0 {
		return 0, 0
	}
	year, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		month, _ = strconv.Atoi(parts[1])
	}
	return year, month
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
