// Package indicator derives auxiliary indicator series from a price store.
package indicator

import (
	"fmt"
	"time"

	"SVMonit/internal/model"
	"SVMonit/internal/series"
)

// IndicatorSource produces indicator series aligned to a price history.
// Every returned series must have exactly one value per date.
type IndicatorSource interface {
	Name() string
	Indicators(dates []time.Time, prices []float64) (map[string][]float64, error)
}

// Order in which derived series are appended to the store.
var seriesOrder = []string{
	model.SeriesMVRV,
	model.SeriesSTHMVRV,
	model.SeriesLTHMVRV,
	model.SeriesLTHSTHRatio,
	model.SeriesRSI,
}

// Derive returns a new store carrying the indicators of src. The date grid
// of the result is identical to that of store.
func Derive(store *series.Store, src IndicatorSource) (*series.Store, error) {
	if store.Len() < 2 {
		return nil, fmt.Errorf("%w: %s needs at least 2 points, store has %d",
			model.ErrInsufficientData, src.Name(), store.Len())
	}
	ind, err := src.Indicators(store.Dates(), store.Prices())
	if err != nil {
		return nil, fmt.Errorf("%s indicators: %w", src.Name(), err)
	}

	out := store
	add := func(name string) error {
		vals, ok := ind[name]
		if !ok {
			return nil
		}
		next, err := out.WithSeries(name, vals)
		if err != nil {
			return fmt.Errorf("%s indicators: %w", src.Name(), err)
		}
		out = next
		return nil
	}
	for _, name := range seriesOrder {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	for name := range ind {
		if out.Has(name) {
			continue
		}
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
