// Package scrape fetches price data from the external price-charting site:
// single-item lookups via its search and detail pages, and paginated
// full-catalog listings per platform.
//
// Every operation degrades to "no data" instead of returning an error for
// transport or parse failures; callers decide what an empty result means.
package scrape
