package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"collectabase/internal/catalog"
)

// bulkDelay paces bulk resolution so live sources are not hammered.
const bulkDelay = 400 * time.Millisecond

// BulkOutcome is the result of resolving one item in a bulk run.
type BulkOutcome struct {
	Item       Item
	Resolution *Resolution
	Err        error
}

// BulkStats summarizes a bulk resolution run.
type BulkStats struct {
	Total    int
	Resolved int
	Manual   int
	Failed   int
	BySource map[catalog.Source]int
}

// ResolveAll resolves every item in order, waiting 400ms between items.
// Per-item failures are captured in the outcomes; only context cancellation
// aborts the run early.
func (r *Resolver) ResolveAll(ctx context.Context, items []Item) ([]BulkOutcome, BulkStats, error) {
	stats := BulkStats{
		Total:    len(items),
		BySource: make(map[catalog.Source]int),
	}
	limiter := rate.NewLimiter(rate.Every(bulkDelay), 1)

	outcomes := make([]BulkOutcome, 0, len(items))
	for _, item := range items {
		if err := limiter.Wait(ctx); err != nil {
			return outcomes, stats, err
		}

		resolution, err := r.ResolveMarketPrice(ctx, item)
		outcome := BulkOutcome{Item: item, Resolution: resolution, Err: err}
		outcomes = append(outcomes, outcome)

		switch {
		case err == nil:
			stats.Resolved++
			stats.BySource[resolution.Source]++
		case errors.Is(err, ErrManualValuation):
			stats.Manual++
		default:
			stats.Failed++
			if ctx.Err() != nil {
				return outcomes, stats, ctx.Err()
			}
			r.logger.Warn("bulk resolution item failed",
				slog.String("title", item.Title), slog.Any("error", err))
		}
	}

	r.logger.Info("bulk resolution complete",
		slog.Int("total", stats.Total),
		slog.Int("resolved", stats.Resolved),
		slog.Int("manual", stats.Manual),
		slog.Int("failed", stats.Failed))
	return outcomes, stats, nil
}
