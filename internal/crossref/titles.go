package crossref

import (
	"context"
	"net/url"

	"github.com/instascholar/scholar/internal/outcome"
)

// LookupISSN returns the first ISSN of the best works match for a journal
// title, using the container-title query.
func (c *Client) LookupISSN(ctx context.Context, journalTitle string) outcome.Result[string] {
	query := url.Values{}
	query.Set("query.container-title", journalTitle)
	query.Set("rows", "1")
	query.Set("select", "ISSN,container-title")

	result, err := c.SearchWorks(ctx, query)
	if err != nil {
		c.logger.Error("ISSN lookup failed", "journal", journalTitle, "error", err)
		return outcome.Failed("", err)
	}
	if len(result.Items) == 0 {
		c.logger.Info("no results for journal", "journal", journalTitle)
		return outcome.Absent[string]("no works match the title")
	}

	item := result.Items[0]
	if len(item.ISSN) == 0 || item.ISSN[0] == "" {
		c.logger.Info("no ISSN found for journal", "journal", journalTitle)
		return outcome.Absent[string]("matching work has no ISSN")
	}
	return outcome.Found(item.ISSN[0])
}
