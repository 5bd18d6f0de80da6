// Package series holds the immutable date-indexed store shared by the pipeline
// and the trailing-window selection over it.
package series

import (
	"fmt"
	"math"
	"time"

	"SVMonit/internal/model"
)

// Store is an ordered set of daily dates plus named series aligned to them.
// A Store is never mutated after construction; accessors return copies.
type Store struct {
	dates  []time.Time
	names  []string
	values map[string][]float64
}

// Build creates a store holding the price series of the given history.
// Dates must be strictly increasing and prices finite and positive.
func Build(points []model.PricePoint) (*Store, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty price history", model.ErrInvalidSeries)
	}
	dates := make([]time.Time, len(points))
	prices := make([]float64, len(points))
	for i, p := range points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return nil, fmt.Errorf("%w: price %v at index %d (%s) is not a positive number",
				model.ErrInvalidSeries, p.Price, i, p.Date.Format(time.DateOnly))
		}
		d := model.Day(p.Date)
		if i > 0 && !d.After(dates[i-1]) {
			return nil, fmt.Errorf("%w: date %s at index %d does not follow %s",
				model.ErrInvalidSeries, d.Format(time.DateOnly), i, dates[i-1].Format(time.DateOnly))
		}
		dates[i] = d
		prices[i] = p.Price
	}
	return &Store{
		dates:  dates,
		names:  []string{model.SeriesPrice},
		values: map[string][]float64{model.SeriesPrice: prices},
	}, nil
}

// WithSeries returns a new store that also carries the named series.
// The receiver is left untouched.
func (s *Store) WithSeries(name string, values []float64) (*Store, error) {
	if _, ok := s.values[name]; ok {
		return nil, fmt.Errorf("series %q already present", name)
	}
	if len(values) != len(s.dates) {
		return nil, fmt.Errorf("series %q has %d values, store has %d dates", name, len(values), len(s.dates))
	}
	next := &Store{
		dates:  s.dates,
		names:  append(append(make([]string, 0, len(s.names)+1), s.names...), name),
		values: make(map[string][]float64, len(s.values)+1),
	}
	for k, v := range s.values {
		next.values[k] = v
	}
	next.values[name] = append([]float64(nil), values...)
	return next, nil
}

// Len returns the number of dates.
func (s *Store) Len() int { return len(s.dates) }

// Dates returns a copy of the date grid.
func (s *Store) Dates() []time.Time {
	return append([]time.Time(nil), s.dates...)
}

// First returns the earliest date.
func (s *Store) First() time.Time { return s.dates[0] }

// Last returns the most recent date.
func (s *Store) Last() time.Time { return s.dates[len(s.dates)-1] }

// Names returns the series names in the order they were added.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Has reports whether the named series exists.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Series returns a copy of the named series.
func (s *Store) Series(name string) ([]float64, bool) {
	v, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}

// Prices returns a copy of the price series.
func (s *Store) Prices() []float64 {
	v, _ := s.Series(model.SeriesPrice)
	return v
}

// All returns a view over the whole store.
func (s *Store) All() *View {
	return &View{store: s, start: 0, end: len(s.dates)}
}
