package crossref

import (
	"context"

	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

// FetchReferences returns the DOIs cited by a work, in reference-list order.
// References without a DOI are skipped. Failures are logged and yield a
// failed result with an empty list.
func (c *Client) FetchReferences(ctx context.Context, doi string) outcome.Result[[]string] {
	work, err := c.GetWork(ctx, doi)
	if err != nil {
		c.logger.Error("reference lookup failed", "doi", doi, "error", err)
		return outcome.Failed([]string{}, err)
	}

	refs := ReferenceDOIs(work)
	if len(work.Reference) == 0 {
		c.logger.Info("no references found", "doi", doi)
	} else {
		c.logger.Info("references found", "doi", doi, "entries", len(work.Reference), "with_doi", len(refs))
	}
	return outcome.Found(refs)
}

// ReferenceDOIs returns the normalized DOIs of the references that carry one.
func ReferenceDOIs(w *Work) []string {
	dois := make([]string, 0, len(w.Reference))
	for _, ref := range w.Reference {
		if ref.DOI == "" {
			continue
		}
		dois = append(dois, paper.NormalizeDOI(ref.DOI))
	}
	return dois
}
