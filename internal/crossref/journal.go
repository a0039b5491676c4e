package crossref

import (
	"context"
	"strings"

	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

// ResolveJournal resolves the journal ISSN and name for a DOI.
//
// The print ISSN is preferred, then the first general ISSN. Failures are
// logged and returned as a failed result; the caller never sees an error.
func (c *Client) ResolveJournal(ctx context.Context, doi string) outcome.Result[paper.JournalInfo] {
	work, err := c.GetWork(ctx, doi)
	if err != nil {
		c.logger.Error("journal lookup failed", "doi", doi, "error", err)
		return outcome.Failed(paper.JournalInfo{}, err)
	}

	info := JournalFromWork(work)
	if info.IsEmpty() {
		c.logger.Info("no journal metadata", "doi", doi)
		return outcome.Absent[paper.JournalInfo]("no ISSN or container title")
	}

	c.logger.Info("journal resolved", "doi", doi, "issn", paper.Deref(info.ISSN), "journal", paper.Deref(info.Name))
	return outcome.Found(info)
}

// JournalFromWork extracts the journal ISSN and name from a work record.
func JournalFromWork(w *Work) paper.JournalInfo {
	if w == nil {
		return paper.JournalInfo{}
	}
	return paper.JournalInfo{
		ISSN: selectISSN(w),
		Name: firstNonEmpty(w.ContainerTitle),
	}
}

// selectISSN prefers the print ISSN, then the first entry of the ISSN list.
func selectISSN(w *Work) *string {
	for _, t := range w.ISSNType {
		if t.Type == "print" && t.Value != "" {
			return paper.StringPtr(t.Value)
		}
	}
	if len(w.ISSN) > 0 {
		return paper.StringPtr(w.ISSN[0])
	}
	return nil
}

func firstNonEmpty(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return paper.StringPtr(strings.TrimSpace(values[0]))
}
