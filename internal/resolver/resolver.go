// Package resolver turns an inventory item into a market price by walking a
// fixed chain of sources: the local catalog cache, a live price-guide scrape,
// a marketplace listing aggregate, and finally reference links for manual
// research. The first source that yields a price wins and is persisted as a
// snapshot.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"collectabase/internal/catalog"
	"collectabase/internal/currency"
	"collectabase/internal/marketplace"
	"collectabase/internal/metadata"
	"collectabase/internal/scrape"
	"collectabase/internal/stats"
)

// ErrManualValuation indicates no source produced a price and the item value
// must be set by hand.
var ErrManualValuation = errors.New("no market price found, set the value manually")

// Item is the inventory record a resolution runs for. ID may be zero for
// ad-hoc queries; snapshots are only recorded for positive IDs.
type Item struct {
	ID       int64
	Title    string
	Platform string
}

// Resolution is the outcome of one price resolution. Prices are EUR.
//
// ConversionRate is the USD to EUR rate applied to this resolution; it is
// zero when prices were served from the catalog cache unchanged.
type Resolution struct {
	RequestID       string
	ItemRef         int64
	Source          catalog.Source
	MatchedTitle    string
	MatchedPlatform string
	MatchScore      float64
	ExternalID      string

	LooseEUR    *float64
	CompleteEUR *float64
	NewEUR      *float64

	ConversionRate float64
	SampleSize     int
	PriceMin       *float64
	PriceMax       *float64

	// Reference fields are populated when the resolution ends in
	// ErrManualValuation but metadata lookup found a match: the matched
	// name, its platforms, cover art, and research links give a human
	// enough context to verify the item before pricing it by hand.
	ReferenceName      string
	ReferencePlatforms []string
	ReferenceCoverURL  string
	ReferenceLinks     []string
}

// Catalog is the store surface the resolver needs.
type Catalog interface {
	FindBestMatch(ctx context.Context, title, platform string) (*catalog.Candidate, error)
	Upsert(ctx context.Context, observations []scrape.Observation, rate float64) (catalog.UpsertStats, error)
	RecordSnapshot(ctx context.Context, snap catalog.Snapshot) (*catalog.Snapshot, error)
}

// Scraper fetches a single live price-guide observation.
type Scraper interface {
	FetchOne(ctx context.Context, title, platform string) (*scrape.Observation, error)
}

// Marketplace searches current listings for prices.
type Marketplace interface {
	Configured() bool
	SearchPrices(ctx context.Context, query string, condition marketplace.Condition) ([]float64, error)
}

// Metadata looks up game context and reference links for manual research.
type Metadata interface {
	Configured() bool
	Lookup(ctx context.Context, title, platform string) (*metadata.Result, error)
}

// RateSource supplies the USD to EUR conversion rate.
type RateSource interface {
	ReferenceRate(ctx context.Context) (float64, bool)
}

// Resolver walks the resolution chain.
type Resolver struct {
	catalog     Catalog
	scraper     Scraper
	marketplace Marketplace
	metadata    Metadata
	rates       RateSource
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithScraper attaches the live price-guide scraper.
func WithScraper(scraper Scraper) Option {
	return func(r *Resolver) { r.scraper = scraper }
}

// WithMarketplace attaches the marketplace client.
func WithMarketplace(client Marketplace) Option {
	return func(r *Resolver) { r.marketplace = client }
}

// WithMetadata attaches the metadata client.
func WithMetadata(client Metadata) Option {
	return func(r *Resolver) { r.metadata = client }
}

// WithRates attaches the conversion rate source.
func WithRates(rates RateSource) Option {
	return func(r *Resolver) { r.rates = rates }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver over the given catalog store. Sources beyond the
// catalog are optional; missing ones are skipped in the chain.
func New(cat Catalog, opts ...Option) (*Resolver, error) {
	if cat == nil {
		return nil, errors.New("resolver: catalog store is required")
	}
	resolver := &Resolver{
		catalog: cat,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver, nil
}

// ResolveMarketPrice resolves a price for one item. Sources are tried in
// order; the first hit is recorded as a snapshot and returned. When every
// source misses, the returned error wraps ErrManualValuation and the
// resolution still carries any reference links that were found.
func (r *Resolver) ResolveMarketPrice(ctx context.Context, item Item) (*Resolution, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, errors.New("resolver: item title is empty")
	}

	res := &Resolution{
		RequestID: uuid.New().String(),
		ItemRef:   item.ID,
	}
	log := r.logger.With(
		slog.String("request_id", res.RequestID),
		slog.String("title", title),
		slog.String("platform", item.Platform))

	done, err := r.fromCatalog(ctx, item, title, res, log)
	if err != nil {
		return nil, err
	}
	if done {
		return res, nil
	}

	done, err = r.fromScrape(ctx, item, title, res, log)
	if err != nil {
		return nil, err
	}
	if done {
		return res, nil
	}

	done, err = r.fromMarketplace(ctx, item, title, res, log)
	if err != nil {
		return nil, err
	}
	if done {
		return res, nil
	}

	r.collectReferenceLinks(ctx, item, title, res, log)
	log.Info("price resolution exhausted", slog.Int("reference_links", len(res.ReferenceLinks)))
	return res, fmt.Errorf("resolve %q: %w", title, ErrManualValuation)
}

// fromCatalog serves a price from the local cache without any network call.
// A miss on the requested platform retries once across all platforms.
func (r *Resolver) fromCatalog(ctx context.Context, item Item, title string, res *Resolution, log *slog.Logger) (bool, error) {
	candidate, err := r.catalog.FindBestMatch(ctx, title, item.Platform)
	if err != nil {
		return false, fmt.Errorf("catalog lookup: %w", err)
	}
	if candidate == nil && strings.TrimSpace(item.Platform) != "" {
		candidate, err = r.catalog.FindBestMatch(ctx, title, "")
		if err != nil {
			return false, fmt.Errorf("catalog lookup: %w", err)
		}
	}
	if candidate == nil {
		return false, nil
	}

	entry := candidate.Entry
	res.Source = catalog.SourceCatalogCache
	res.MatchedTitle = entry.Title
	res.MatchedPlatform = entry.Platform
	res.MatchScore = candidate.Score
	res.ExternalID = entry.ExternalID
	res.LooseEUR = entry.LooseEUR
	res.CompleteEUR = entry.CompleteEUR
	res.NewEUR = entry.NewEUR

	r.recordSnapshot(ctx, item, res, log)
	log.Info("price resolved from catalog",
		slog.String("matched", entry.Title),
		slog.Float64("score", candidate.Score))
	return true, nil
}

// fromScrape fetches one live price-guide page, folds the observation back
// into the catalog, and serves the converted price.
func (r *Resolver) fromScrape(ctx context.Context, item Item, title string, res *Resolution, log *slog.Logger) (bool, error) {
	if r.scraper == nil {
		return false, nil
	}

	obs, err := r.scraper.FetchOne(ctx, title, item.Platform)
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("live scrape: %w", err)
		}
		log.Warn("live scrape failed", slog.Any("error", err))
		return false, nil
	}
	if obs == nil || (obs.LooseUSD == nil && obs.CompleteUSD == nil && obs.NewUSD == nil) {
		return false, nil
	}

	rate := r.conversionRate(ctx)
	if _, err := r.catalog.Upsert(ctx, []scrape.Observation{*obs}, rate); err != nil {
		log.Warn("failed to cache scraped observation", slog.Any("error", err))
	}

	res.Source = catalog.SourceLiveScrape
	res.MatchedTitle = obs.Title
	res.MatchedPlatform = obs.Platform
	res.ExternalID = obs.ExternalID
	res.ConversionRate = rate
	res.LooseEUR = toEUR(obs.LooseUSD, rate)
	res.CompleteEUR = toEUR(obs.CompleteUSD, rate)
	res.NewEUR = toEUR(obs.NewUSD, rate)

	r.recordSnapshot(ctx, item, res, log)
	log.Info("price resolved from live scrape",
		slog.String("matched", obs.Title),
		slog.Float64("rate", rate))
	return true, nil
}

// fromMarketplace aggregates used-condition listing prices into a robust
// median. Marketplace failures degrade to the next source instead of
// aborting the chain.
func (r *Resolver) fromMarketplace(ctx context.Context, item Item, title string, res *Resolution, log *slog.Logger) (bool, error) {
	if r.marketplace == nil || !r.marketplace.Configured() {
		return false, nil
	}

	query := title
	if platform := strings.TrimSpace(item.Platform); platform != "" {
		query += " " + platform
	}
	prices, err := r.marketplace.SearchPrices(ctx, query, marketplace.ConditionUsed)
	if err != nil {
		log.Warn("marketplace search failed", slog.Any("error", err))
		return false, nil
	}

	summary := stats.Aggregate(prices)
	if summary.Median == nil {
		return false, nil
	}

	rate := r.conversionRate(ctx)
	res.Source = catalog.SourceMarketplaceAggregate
	res.MatchedTitle = title
	res.MatchedPlatform = item.Platform
	res.ConversionRate = rate
	res.LooseEUR = toEUR(summary.Median, rate)
	res.SampleSize = summary.SampleSize
	res.PriceMin = toEUR(summary.Min, rate)
	res.PriceMax = toEUR(summary.Max, rate)

	r.recordSnapshot(ctx, item, res, log)
	log.Info("price resolved from marketplace aggregate",
		slog.Int("sample_size", summary.SampleSize),
		slog.Float64("rate", rate))
	return true, nil
}

func (r *Resolver) collectReferenceLinks(ctx context.Context, item Item, title string, res *Resolution, log *slog.Logger) {
	if r.metadata == nil || !r.metadata.Configured() {
		return
	}
	result, err := r.metadata.Lookup(ctx, title, item.Platform)
	if err != nil {
		log.Warn("reference link lookup failed", slog.Any("error", err))
		return
	}
	if result == nil {
		return
	}
	res.ReferenceName = result.Name
	res.ReferencePlatforms = result.Platforms
	res.ReferenceCoverURL = result.CoverURL
	res.ReferenceLinks = result.ReferenceLinks
}

func (r *Resolver) recordSnapshot(ctx context.Context, item Item, res *Resolution, log *slog.Logger) {
	if item.ID <= 0 {
		return
	}
	_, err := r.catalog.RecordSnapshot(ctx, catalog.Snapshot{
		ItemRef:        item.ID,
		Source:         res.Source,
		LoosePrice:     res.LooseEUR,
		CompletePrice:  res.CompleteEUR,
		NewPrice:       res.NewEUR,
		ConversionRate: res.ConversionRate,
		ExternalID:     res.ExternalID,
	})
	if err != nil {
		log.Warn("failed to record price snapshot", slog.Any("error", err))
	}
}

func (r *Resolver) conversionRate(ctx context.Context) float64 {
	if r.rates == nil {
		return currency.FallbackRate
	}
	rate, _ := r.rates.ReferenceRate(ctx)
	return rate
}

func toEUR(usd *float64, rate float64) *float64 {
	if usd == nil {
		return nil
	}
	eur := math.Round(*usd*rate*100) / 100
	return &eur
}
