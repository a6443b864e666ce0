// Package catalog persists scraped price observations in SQLite and answers
// fuzzy lookups against them.
//
// The store is the only owner of catalog rows; Upsert and Clear are the sole
// mutation paths and each call is transactional. Price snapshots recorded
// against inventory items live in the same database but are append-only.
package catalog
