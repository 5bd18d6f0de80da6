package series

import "time"

// View is a contiguous sub-range [start, end) of a Store.
type View struct {
	store      *Store
	start, end int
}

// Len returns the number of dates in the view.
func (v *View) Len() int { return v.end - v.start }

// Start returns the index of the first date of the view in the underlying store.
func (v *View) Start() int { return v.start }

// Store returns the store the view was taken from.
func (v *View) Store() *Store { return v.store }

// Dates returns a copy of the view's dates.
func (v *View) Dates() []time.Time {
	return append([]time.Time(nil), v.store.dates[v.start:v.end]...)
}

// First returns the earliest date in the view.
func (v *View) First() time.Time { return v.store.dates[v.start] }

// Last returns the most recent date in the view.
func (v *View) Last() time.Time { return v.store.dates[v.end-1] }

// Names returns the series names available in the view.
func (v *View) Names() []string { return v.store.Names() }

// Series returns a copy of the named series restricted to the view.
func (v *View) Series(name string) ([]float64, bool) {
	vals, ok := v.store.values[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), vals[v.start:v.end]...), true
}

// Latest returns the last value of the named series in the view.
func (v *View) Latest(name string) (float64, bool) {
	vals, ok := v.store.values[name]
	if !ok || v.Len() == 0 {
		return 0, false
	}
	return vals[v.end-1], true
}
