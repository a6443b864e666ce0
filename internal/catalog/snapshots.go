package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// defaultHistoryLimit bounds how many snapshots History returns per item
// when the caller does not name a limit.
const defaultHistoryLimit = 20

// ErrNoSnapshot indicates an item has no recorded price history.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// RecordSnapshot appends a price snapshot for an item. ObservedAt defaults to
// now when unset. The stored snapshot is returned with its assigned ID.
func (s *Store) RecordSnapshot(ctx context.Context, snap Snapshot) (*Snapshot, error) {
	if snap.ItemRef <= 0 {
		return nil, fmt.Errorf("record snapshot: item ref %d is not positive", snap.ItemRef)
	}
	if snap.Source == "" {
		return nil, errors.New("record snapshot: source is empty")
	}

	observedAt := snap.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO price_snapshots (
            item_ref, source, loose_price, complete_price, new_price,
            conversion_rate, external_id, observed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ItemRef, string(snap.Source),
		snap.LoosePrice, snap.CompletePrice, snap.NewPrice,
		snap.ConversionRate, nullableString(snap.ExternalID),
		observedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	stored := snap
	stored.ID = id
	stored.ObservedAt = observedAt
	return &stored, nil
}

// History returns the most recent snapshots for an item, newest first,
// capped at limit entries. A non-positive limit falls back to 20.
func (s *Store) History(ctx context.Context, itemRef int64, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_ref, source, loose_price, complete_price, new_price,
            conversion_rate, external_id, observed_at
        FROM price_snapshots
        WHERE item_ref = ?
        ORDER BY observed_at DESC, id DESC
        LIMIT ?`,
		itemRef, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var (
			snap       Snapshot
			source     string
			rate       sql.NullFloat64
			externalID sql.NullString
			observedAt string
		)
		err := rows.Scan(
			&snap.ID, &snap.ItemRef, &source,
			&snap.LoosePrice, &snap.CompletePrice, &snap.NewPrice,
			&rate, &externalID, &observedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Source = Source(source)
		snap.ConversionRate = rate.Float64
		snap.ExternalID = externalID.String
		snap.ObservedAt = parseTimestamp(observedAt)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// LatestSnapshot returns the newest snapshot for an item, or ErrNoSnapshot.
func (s *Store) LatestSnapshot(ctx context.Context, itemRef int64) (*Snapshot, error) {
	snapshots, err := s.History(ctx, itemRef, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("item %d: %w", itemRef, ErrNoSnapshot)
	}
	return &snapshots[0], nil
}
