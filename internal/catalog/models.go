package catalog

import "time"

// Source identifies where a price snapshot came from.
type Source string

const (
	SourceCatalogCache         Source = "catalog-cache"
	SourceLiveScrape           Source = "live-scrape"
	SourceMarketplaceAggregate Source = "marketplace-aggregate"
	SourceManual               Source = "manual"
)

// Entry is one cached price observation for a title on a platform.
//
// At most one live entry exists per (platform, external_id) when the id is
// non-empty, otherwise per (platform, case-insensitive title); Upsert heals
// violations by keeping the most recently inserted row.
type Entry struct {
	ID          int64
	ExternalID  string
	Title       string
	Platform    string
	LooseUSD    *float64
	CompleteUSD *float64
	NewUSD      *float64
	LooseEUR    *float64
	CompleteEUR *float64
	NewEUR      *float64
	SourceURL   string

	FirstSeenAt   time.Time
	LastSeenAt    time.Time
	LastChangedAt time.Time
}

// Candidate pairs a catalog entry with its score against a query. It is a
// transient result of a probabilistic join and is never persisted.
type Candidate struct {
	Entry Entry
	Score float64
}

// Snapshot is an immutable, timestamped price observation tied to one
// inventory item. Snapshots are never mutated or deleted.
type Snapshot struct {
	ID             int64
	ItemRef        int64
	Source         Source
	LoosePrice     *float64
	CompletePrice  *float64
	NewPrice       *float64
	ConversionRate float64
	ExternalID     string
	ObservedAt     time.Time
}

// UpsertStats summarizes one Upsert call.
type UpsertStats struct {
	Processed         int
	Inserted          int
	Updated           int
	Unchanged         int
	DedupedInBatch    int
	DuplicatesRemoved int
}
