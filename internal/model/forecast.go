package model

import "time"

// Order is an ARIMA (p, d, q) order.
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

// ForecastPoint is a single projected value.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastResult holds the projected values following the last observation.
type ForecastResult struct {
	Points []ForecastPoint `json:"points"`

	Order        Order     `json:"order"`
	AR           []float64 `json:"ar"`
	MA           []float64 `json:"ma"`
	Sigma2       float64   `json:"sigma2"`
	Observations int       `json:"observations"`
}

// Dates returns the forecast dates in order.
func (r *ForecastResult) Dates() []time.Time {
	out := make([]time.Time, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Date
	}
	return out
}

// Values returns the forecast values in order.
func (r *ForecastResult) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Value
	}
	return out
}

// At returns the point h steps ahead (1-based), if present.
func (r *ForecastResult) At(h int) (ForecastPoint, bool) {
	if h < 1 || h > len(r.Points) {
		return ForecastPoint{}, false
	}
	return r.Points[h-1], true
}
