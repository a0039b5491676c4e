// Package pdf finds the DOI printed in a paper's PDF.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/instascholar/scholar/internal/paper"
)

// DefaultMaxPages is how many leading pages ExtractDOI searches.
const DefaultMaxPages = 3

// doiPattern matches 10.<registrant>/<suffix> up to whitespace or a
// character that cannot end a printed DOI.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// ExtractDOI returns the first DOI found in the leading pages of a PDF,
// normalized. An empty string with a nil error means none was found.
func ExtractDOI(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// findDOI returns the first valid DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		doi := paper.NormalizeDOI(match)
		if paper.ValidDOI(doi) {
			return doi
		}
	}
	return ""
}
