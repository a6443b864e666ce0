package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// Observation is one raw scraped price record before it enters the catalog.
type Observation struct {
	ExternalID  string
	Title       string
	Platform    string
	LooseUSD    *float64
	CompleteUSD *float64
	NewUSD      *float64
	SourceURL   string
}

// Key identifies an observation for dedup purposes: the source's own id when
// present, otherwise the case-folded title.
func (o Observation) Key() string {
	if o.ExternalID != "" {
		return "id:" + o.ExternalID
	}
	return "title:" + strings.ToLower(strings.TrimSpace(o.Title))
}

// Price markers recognized on detail pages and catalog rows.
const (
	looseMarker    = `id="used_price"`
	completeMarker = `id="complete_price"`
	newMarker      = `id="new_price"`
)

var (
	dollarAmount  = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	resultLink    = regexp.MustCompile(`href="(/game/[^"]+)"`)
	productIDAttr = regexp.MustCompile(`name="product_id"[^>]*value="(\d+)"`)
	productName   = regexp.MustCompile(`(?s)id="product_name"[^>]*>\s*([^<]+)`)
	rowID         = regexp.MustCompile(`id="product-(\d+)"`)
	rowTitleLink  = regexp.MustCompile(`(?s)class="title[^"]*"[^>]*>.*?<a[^>]*href="([^"]+)"[^>]*>\s*([^<]+)`)
)

// priceNearMarker finds the first dollar amount within a short window after
// the marker. Returns nil when the marker is absent or carries no amount
// (the site renders "N/A" for unpriced conditions).
func priceNearMarker(html, marker string) *float64 {
	idx := strings.Index(html, marker)
	if idx < 0 {
		return nil
	}
	window := html[idx:]
	if len(window) > 300 {
		window = window[:300]
	}
	m := dollarAmount.FindStringSubmatch(window)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// firstResultLink extracts the first product detail link from a search page.
func firstResultLink(html string) string {
	m := resultLink.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return m[1]
}

// parseDetailPage extracts the external id, display name, and prices from a
// product detail page. The loose price is mandatory; without it the page is
// treated as unparsable and ok is false.
func parseDetailPage(html string) (Observation, bool) {
	var obs Observation
	if m := productIDAttr.FindStringSubmatch(html); m != nil {
		obs.ExternalID = m[1]
	}
	if m := productName.FindStringSubmatch(html); m != nil {
		obs.Title = strings.TrimSpace(m[1])
	}
	obs.LooseUSD = priceNearMarker(html, looseMarker)
	obs.CompleteUSD = priceNearMarker(html, completeMarker)
	obs.NewUSD = priceNearMarker(html, newMarker)
	if obs.Title == "" || obs.LooseUSD == nil {
		return Observation{}, false
	}
	return obs, true
}

// parseCatalogRows extracts every product row from one catalog listing page.
// Rows without a title or without at least one parseable price are skipped.
func parseCatalogRows(html string) []Observation {
	chunks := strings.Split(html, "<tr")
	if len(chunks) <= 1 {
		return nil
	}

	var rows []Observation
	for _, chunk := range chunks[1:] {
		var obs Observation
		if m := rowID.FindStringSubmatch(chunk); m != nil {
			obs.ExternalID = m[1]
		}
		if m := rowTitleLink.FindStringSubmatch(chunk); m != nil {
			obs.SourceURL = m[1]
			obs.Title = strings.TrimSpace(m[2])
		}
		obs.LooseUSD = priceNearMarker(chunk, looseMarker)
		obs.CompleteUSD = priceNearMarker(chunk, completeMarker)
		obs.NewUSD = priceNearMarker(chunk, newMarker)
		if obs.Title == "" {
			continue
		}
		if obs.LooseUSD == nil && obs.CompleteUSD == nil && obs.NewUSD == nil {
			continue
		}
		rows = append(rows, obs)
	}
	return rows
}
