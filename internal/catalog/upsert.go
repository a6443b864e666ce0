package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"collectabase/internal/scrape"
)

// priceTolerance is the smallest USD difference treated as a real price
// change. Differences below it refresh last_seen_at only.
const priceTolerance = 0.005

func priceChanged(before, after *float64) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return math.Abs(*before-*after) >= priceTolerance
}

func convertUSD(usd *float64, rate float64) *float64 {
	if usd == nil {
		return nil
	}
	eur := math.Round(*usd*rate*100) / 100
	return &eur
}

// Upsert reconciles a batch of scraped observations against the live catalog
// inside a single transaction. Duplicate observations within the batch are
// collapsed keeping the first occurrence; duplicate live rows for the same
// identity are collapsed keeping the most recently inserted one. Prices are
// converted to EUR at the given rate. Re-running the same batch is a no-op
// apart from last_seen_at refreshes.
func (s *Store) Upsert(ctx context.Context, observations []scrape.Observation, rate float64) (UpsertStats, error) {
	var stats UpsertStats
	if rate <= 0 {
		return stats, fmt.Errorf("upsert: conversion rate must be positive, got %v", rate)
	}
	if len(observations) == 0 {
		return stats, nil
	}

	seen := make(map[string]struct{}, len(observations))
	batch := make([]scrape.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs.Title == "" && obs.ExternalID == "" {
			continue
		}
		key := obs.Key()
		if _, dup := seen[key]; dup {
			stats.DedupedInBatch++
			continue
		}
		seen[key] = struct{}{}
		batch = append(batch, obs)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, obs := range batch {
		stats.Processed++

		existing, removed, err := findExisting(ctx, tx, obs)
		if err != nil {
			return stats, err
		}
		stats.DuplicatesRemoved += removed

		if existing == nil {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_entries (
                    external_id, title, platform,
                    loose_usd, complete_usd, new_usd,
                    loose_eur, complete_eur, new_eur,
                    source_url, first_seen_at, last_seen_at, last_changed_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				obs.ExternalID, obs.Title, obs.Platform,
				obs.LooseUSD, obs.CompleteUSD, obs.NewUSD,
				convertUSD(obs.LooseUSD, rate), convertUSD(obs.CompleteUSD, rate), convertUSD(obs.NewUSD, rate),
				nullableString(obs.SourceURL), now, now, now,
			)
			if err != nil {
				return stats, fmt.Errorf("insert entry %q: %w", obs.Title, err)
			}
			stats.Inserted++
			continue
		}

		changed := priceChanged(existing.LooseUSD, obs.LooseUSD) ||
			priceChanged(existing.CompleteUSD, obs.CompleteUSD) ||
			priceChanged(existing.NewUSD, obs.NewUSD)

		if changed {
			externalID := existing.ExternalID
			if obs.ExternalID != "" {
				externalID = obs.ExternalID
			}
			_, err := tx.ExecContext(ctx,
				`UPDATE catalog_entries SET
                    external_id = ?, title = ?,
                    loose_usd = ?, complete_usd = ?, new_usd = ?,
                    loose_eur = ?, complete_eur = ?, new_eur = ?,
                    source_url = ?, last_seen_at = ?, last_changed_at = ?
                WHERE id = ?`,
				externalID, obs.Title,
				obs.LooseUSD, obs.CompleteUSD, obs.NewUSD,
				convertUSD(obs.LooseUSD, rate), convertUSD(obs.CompleteUSD, rate), convertUSD(obs.NewUSD, rate),
				nullableString(obs.SourceURL), now, now,
				existing.ID,
			)
			if err != nil {
				return stats, fmt.Errorf("update entry %d: %w", existing.ID, err)
			}
			stats.Updated++
			continue
		}

		externalID := existing.ExternalID
		if externalID == "" {
			externalID = obs.ExternalID
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE catalog_entries SET
                external_id = ?, title = ?, source_url = ?, last_seen_at = ?
            WHERE id = ?`,
			externalID, obs.Title, nullableString(obs.SourceURL), now, existing.ID,
		)
		if err != nil {
			return stats, fmt.Errorf("refresh entry %d: %w", existing.ID, err)
		}
		stats.Unchanged++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit upsert: %w", err)
	}
	return stats, nil
}

// findExisting locates the live row for an observation, matching by
// (platform, external_id) first and by case-insensitive title as fallback.
// Extra rows sharing the identity are deleted, keeping the newest.
func findExisting(ctx context.Context, tx *sql.Tx, obs scrape.Observation) (*Entry, int, error) {
	var entries []Entry
	if obs.ExternalID != "" {
		found, err := queryEntries(ctx, tx,
			"SELECT "+entryColumns+" FROM catalog_entries WHERE platform = ? AND external_id = ? ORDER BY id DESC",
			obs.Platform, obs.ExternalID)
		if err != nil {
			return nil, 0, err
		}
		entries = found
	}
	if len(entries) == 0 && obs.Title != "" {
		found, err := queryEntries(ctx, tx,
			"SELECT "+entryColumns+" FROM catalog_entries WHERE platform = ? AND lower(title) = lower(?) ORDER BY id DESC",
			obs.Platform, obs.Title)
		if err != nil {
			return nil, 0, err
		}
		entries = found
	}
	if len(entries) == 0 {
		return nil, 0, nil
	}

	keep := entries[0]
	removed := 0
	for _, extra := range entries[1:] {
		if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries WHERE id = ?", extra.ID); err != nil {
			return nil, removed, fmt.Errorf("remove duplicate entry %d: %w", extra.ID, err)
		}
		removed++
	}
	return &keep, removed, nil
}

func queryEntries(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]Entry, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan existing entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
