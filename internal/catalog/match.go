package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"collectabase/internal/match"
	"collectabase/internal/textutil"
)

// candidateLimit caps how many rows the unfiltered fallback scan scores.
const candidateLimit = 400

// FindBestMatch scores catalog entries against a free-form title and platform
// and returns the best candidate at or above the match threshold, or nil when
// nothing qualifies. Ties on score go to the most recently seen entry.
//
// Candidates are drawn from rows on the same normalized platform when any
// exist; otherwise the scan widens to all platforms, prefiltered by the
// longest cleaned title tokens.
func (s *Store) FindBestMatch(ctx context.Context, title, platform string) (*Candidate, error) {
	candidates, err := s.scoredCandidates(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	best := BestCandidate(candidates)
	if best == nil || best.Score < match.Threshold {
		return nil, nil
	}
	return best, nil
}

// TopCandidates returns the strongest catalog matches for a title in
// descending score order, most recently seen first on ties, capped at limit.
// Candidates below the match threshold are included so near misses can be
// inspected.
func (s *Store) TopCandidates(ctx context.Context, title, platform string, limit int) ([]Candidate, error) {
	candidates, err := s.scoredCandidates(ctx, title, platform)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Entry.LastSeenAt.After(candidates[j].Entry.LastSeenAt)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (s *Store) scoredCandidates(ctx context.Context, title, platform string) ([]Candidate, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}

	var (
		entries []Entry
		err     error
	)
	normPlatform := textutil.Normalize(platform)
	if normPlatform != "" {
		entries, err = s.EntriesByPlatform(ctx, normPlatform)
		if err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		entries, err = s.candidatesByTokens(ctx, title, platform)
		if err != nil {
			return nil, err
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, Candidate{
			Entry: entry,
			Score: match.Score(title, platform, entry.Title, entry.Platform),
		})
	}
	return candidates, nil
}

// BestCandidate picks the winning candidate: highest score, ties going to the
// most recently seen entry. Returns nil for an empty slice.
func BestCandidate(candidates []Candidate) *Candidate {
	var best *Candidate
	for i := range candidates {
		candidate := &candidates[i]
		if best != nil {
			if candidate.Score < best.Score {
				continue
			}
			if candidate.Score == best.Score && !candidate.Entry.LastSeenAt.After(best.Entry.LastSeenAt) {
				continue
			}
		}
		best = candidate
	}
	return best
}

// candidatesByTokens scans across platforms, narrowed by LIKE filters on the
// longest cleaned tokens of the query title. Tokens come out of the
// normalizer alphanumeric, so no LIKE escaping is needed.
func (s *Store) candidatesByTokens(ctx context.Context, title, platform string) ([]Entry, error) {
	tokens := textutil.Tokens(textutil.CleanTitle(title, platform))
	sort.SliceStable(tokens, func(i, j int) bool {
		return len(tokens[i]) > len(tokens[j])
	})
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}

	query := "SELECT " + entryColumns + " FROM catalog_entries"
	args := make([]any, 0, len(tokens))
	if len(tokens) > 0 {
		clauses := make([]string, 0, len(tokens))
		for _, token := range tokens {
			clauses = append(clauses, "lower(title) LIKE ?")
			args = append(args, "%"+token+"%")
		}
		query += " WHERE " + strings.Join(clauses, " OR ")
	}
	query += " ORDER BY last_seen_at DESC, id DESC LIMIT ?"
	args = append(args, candidateLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
