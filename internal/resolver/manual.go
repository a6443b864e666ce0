package resolver

import (
	"context"
	"errors"
	"fmt"

	"collectabase/internal/catalog"
)

// RecordManual stores a hand-entered EUR valuation as a snapshot. At least
// one price must be given. The conversion rate is recorded as 1.0 since the
// values are entered in EUR directly.
func (r *Resolver) RecordManual(ctx context.Context, itemRef int64, loose, complete, newPrice *float64) (*catalog.Snapshot, error) {
	if itemRef <= 0 {
		return nil, fmt.Errorf("resolver: item ref %d is not positive", itemRef)
	}
	if loose == nil && complete == nil && newPrice == nil {
		return nil, errors.New("resolver: manual valuation needs at least one price")
	}
	for _, price := range []*float64{loose, complete, newPrice} {
		if price != nil && *price < 0 {
			return nil, fmt.Errorf("resolver: negative price %v", *price)
		}
	}

	snap, err := r.catalog.RecordSnapshot(ctx, catalog.Snapshot{
		ItemRef:        itemRef,
		Source:         catalog.SourceManual,
		LoosePrice:     loose,
		CompletePrice:  complete,
		NewPrice:       newPrice,
		ConversionRate: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("record manual valuation: %w", err)
	}
	return snap, nil
}
