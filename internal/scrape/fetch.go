package scrape

import (
	"context"

	"collectabase/internal/textutil"
)

// FetchOne looks up a single item: search the source, follow the first
// result link, and extract prices from the detail page. Returns (nil, nil)
// on any transport failure, missing result, or unparsable loose price.
func (c *Client) FetchOne(ctx context.Context, title, platform string) (*Observation, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("type", "prices").
		SetQueryParam("q", title)
	if slug := PlatformSlug(platform); slug != "" {
		req.SetQueryParam("console", slug)
	}

	resp, err := req.Get(c.baseURL + "/search-products")
	if err != nil {
		c.logger.Debug("price source search failed", "title", title, "error", err)
		return nil, nil
	}
	if !resp.IsSuccess() {
		c.logger.Debug("price source search rejected", "title", title, "status", resp.StatusCode())
		return nil, nil
	}

	link := firstResultLink(string(resp.Body()))
	if link == "" {
		c.logger.Debug("price source search returned no results", "title", title)
		return nil, nil
	}

	detailURL := c.baseURL + link
	detail, err := c.http.R().SetContext(ctx).Get(detailURL)
	if err != nil {
		c.logger.Debug("price source detail fetch failed", "url", detailURL, "error", err)
		return nil, nil
	}
	if !detail.IsSuccess() {
		c.logger.Debug("price source detail rejected", "url", detailURL, "status", detail.StatusCode())
		return nil, nil
	}

	obs, ok := parseDetailPage(string(detail.Body()))
	if !ok {
		c.logger.Debug("price source detail unparsable", "url", detailURL)
		return nil, nil
	}
	obs.Platform = textutil.Normalize(platform)
	obs.SourceURL = detailURL
	return &obs, nil
}
