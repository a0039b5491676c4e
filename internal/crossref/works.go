package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/instascholar/scholar/internal/outcome"
	"github.com/instascholar/scholar/internal/paper"
)

// ListDOIs lists the DOIs a journal published in [startDate, endDate].
//
// Pages are fetched with a deep-paging cursor until a page yields no DOIs or
// no next cursor is returned. A request error stops paging; the DOIs listed so
// far are kept in the failed result. Order follows the API; duplicates are kept.
func (c *Client) ListDOIs(ctx context.Context, issn, startDate, endDate string) outcome.Result[paper.DoiBatch] {
	batch := paper.DoiBatch{ISSN: issn, StartDate: startDate, EndDate: endDate, DOIs: []string{}}

	if err := paper.ValidateDateRange(startDate, endDate); err != nil {
		c.logger.Error("invalid date range", "issn", issn, "error", err)
		return outcome.Failed(batch, err)
	}

	query := url.Values{}
	query.Set("filter", fmt.Sprintf("issn:%s,from-pub-date:%s,until-pub-date:%s", issn, startDate, endDate))
	query.Set("rows", strconv.Itoa(c.rows))
	query.Set("select", "DOI")

	dois := []string{}
	cursor := InitialCursor
	for page := 1; ; page++ {
		query.Set("cursor", cursor)

		result, err := c.SearchWorks(ctx, query)
		if err != nil {
			c.logger.Error("listing DOIs aborted", "issn", issn, "page", page, "listed", len(dois), "error", err)
			batch.DOIs = dois
			return outcome.Failed(batch, fmt.Errorf("page %d: %w", page, err))
		}

		added := 0
		for _, item := range result.Items {
			if item.DOI == "" {
				continue
			}
			dois = append(dois, item.DOI)
			added++
		}
		c.logger.Info("listed DOI page", "issn", issn, "page", page, "dois", added, "total", len(dois))

		if added == 0 || result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	batch.DOIs = dois
	return outcome.Found(batch)
}
