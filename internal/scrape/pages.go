package scrape

import (
	"context"
	"strconv"
	"strings"

	"collectabase/internal/textutil"
)

// ScrapeCatalogPage fetches one page of a platform's catalog listing and
// extracts every row carrying a title and at least one parseable price.
// Returns nil rows on transport or parse failure.
func (c *Client) ScrapeCatalogPage(ctx context.Context, slug string, page int) ([]Observation, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("sort", "name").
		SetQueryParam("page", strconv.Itoa(page)).
		Get(c.baseURL + "/console/" + slug)
	if err != nil {
		c.logger.Debug("catalog page fetch failed", "slug", slug, "page", page, "error", err)
		return nil, nil
	}
	if !resp.IsSuccess() {
		c.logger.Debug("catalog page rejected", "slug", slug, "page", page, "status", resp.StatusCode())
		return nil, nil
	}
	return parseCatalogRows(string(resp.Body())), nil
}

// ScrapePlatformCatalog walks a platform's catalog pages from 1 until a
// termination heuristic fires: an empty page, a page whose entry signature
// repeats the previous page (a site quirk where pagination stops advancing),
// a page shorter than the first observed page (last-page heuristic), or the
// hard safety cap. Pages are paced by the client's rate limiter.
func (c *Client) ScrapePlatformCatalog(ctx context.Context, slug, label string) ([]Observation, error) {
	platform := textutil.Normalize(label)

	var all []Observation
	firstPageSize := 0
	previousSignature := ""

	for page := 1; page <= c.maxPages; page++ {
		if page > 1 {
			if err := c.limiter.Wait(ctx); err != nil {
				return all, err
			}
		}

		rows, err := c.ScrapeCatalogPage(ctx, slug, page)
		if err != nil {
			return all, err
		}
		if len(rows) == 0 {
			break
		}

		signature := pageSignature(rows)
		if signature == previousSignature {
			c.logger.Debug("catalog page repeated, stopping", "slug", slug, "page", page)
			break
		}
		previousSignature = signature

		for i := range rows {
			rows[i].Platform = platform
		}
		all = append(all, rows...)

		if firstPageSize == 0 {
			firstPageSize = len(rows)
			continue
		}
		if isShortPage(len(rows), firstPageSize) {
			break
		}
	}

	c.logger.Info("platform catalog scraped", "slug", slug, "entries", len(all))
	return all, nil
}

// pageSignature builds an order-sensitive identity for a page so that a
// page served twice in a row can be detected.
func pageSignature(rows []Observation) string {
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.Key()
	}
	return strings.Join(keys, "\n")
}

// isShortPage reports whether a page is smaller than the first full page,
// which marks the catalog's final page.
func isShortPage(size, firstSize int) bool {
	return firstSize > 0 && size < firstSize
}
