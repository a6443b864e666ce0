package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at dbPath, creating
// parent directories as needed.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("catalog: database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const entryColumns = `id, external_id, title, platform,
    loose_usd, complete_usd, new_usd,
    loose_eur, complete_eur, new_eur,
    source_url, first_seen_at, last_seen_at, last_changed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(scanner rowScanner) (Entry, error) {
	var (
		e         Entry
		sourceURL sql.NullString
		firstSeen string
		lastSeen  string
		changed   string
	)
	err := scanner.Scan(
		&e.ID, &e.ExternalID, &e.Title, &e.Platform,
		&e.LooseUSD, &e.CompleteUSD, &e.NewUSD,
		&e.LooseEUR, &e.CompleteEUR, &e.NewEUR,
		&sourceURL, &firstSeen, &lastSeen, &changed,
	)
	if err != nil {
		return Entry{}, err
	}
	e.SourceURL = sourceURL.String
	e.FirstSeenAt = parseTimestamp(firstSeen)
	e.LastSeenAt = parseTimestamp(lastSeen)
	e.LastChangedAt = parseTimestamp(changed)
	return e, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return time.Time{}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// EntriesByPlatform returns all live entries for a normalized platform name,
// newest first. An empty platform returns every entry.
func (s *Store) EntriesByPlatform(ctx context.Context, platform string) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM catalog_entries ORDER BY last_seen_at DESC, id DESC"
	args := []any{}
	if platform != "" {
		query = "SELECT " + entryColumns + " FROM catalog_entries WHERE platform = ? ORDER BY last_seen_at DESC, id DESC"
		args = append(args, platform)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of live catalog entries, optionally scoped to a
// normalized platform name.
func (s *Store) Count(ctx context.Context, platform string) (int64, error) {
	var (
		count int64
		err   error
	)
	if platform == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM catalog_entries").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM catalog_entries WHERE platform = ?", platform).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Clear removes live entries for the given normalized platform, or every
// entry when platform is empty. It returns the number of rows removed.
// Snapshots are untouched.
func (s *Store) Clear(ctx context.Context, platform string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if platform == "" {
		res, err = s.db.ExecContext(ctx, "DELETE FROM catalog_entries")
	} else {
		res, err = s.db.ExecContext(ctx, "DELETE FROM catalog_entries WHERE platform = ?", platform)
	}
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
