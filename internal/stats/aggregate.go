// Package stats condenses noisy marketplace price samples into a robust
// point estimate. Listing prices are heavy-tailed (bundled accessories,
// mis-titled lots), so a trimmed median tolerates a modest fraction of
// contamination without a full outlier model.
package stats

import "sort"

// trimRatio is the fraction removed from each tail before taking the median.
const trimRatio = 0.10

// Summary describes the aggregate of one price sample.
type Summary struct {
	// Median is the trimmed median, nil when the sample was empty.
	Median *float64
	// Trimmed is the sorted sample after tail removal.
	Trimmed []float64
	// Min and Max span the trimmed sample.
	Min *float64
	Max *float64
	// SampleSize is the number of prices that survived trimming.
	SampleSize int
}

// Aggregate sorts the sample ascending, removes the lowest and highest 10%
// (only when the sample is large enough that each side loses at least one
// element and a non-empty remainder survives), and returns the median of the
// remainder. An empty input yields a zero Summary.
func Aggregate(prices []float64) Summary {
	if len(prices) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	trimmed := sorted
	perSide := int(float64(len(sorted)) * trimRatio)
	if perSide >= 1 && len(sorted)-2*perSide > 0 {
		trimmed = sorted[perSide : len(sorted)-perSide]
	}

	median := medianOf(trimmed)
	low := trimmed[0]
	high := trimmed[len(trimmed)-1]
	return Summary{
		Median:     &median,
		Trimmed:    trimmed,
		Min:        &low,
		Max:        &high,
		SampleSize: len(trimmed),
	}
}

func medianOf(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
