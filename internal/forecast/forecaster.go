// Package forecast projects a daily price series forward with a fixed-order
// ARIMA model.
package forecast

import (
	"fmt"
	"time"

	"SVMonit/internal/model"
)

const (
	// DefaultSteps is the forecast horizon in days when none is given.
	DefaultSteps = 180
	// MinObservations is the shortest series a model is fitted on.
	MinObservations = 10
)

// DefaultOrder is ARIMA(3,1,2).
var DefaultOrder = model.Order{P: 3, D: 1, Q: 2}

// Forecaster fits a model on every call; it holds no state between calls.
type Forecaster struct {
	Model ARIMA
}

// New returns a Forecaster using DefaultOrder.
func New() *Forecaster {
	return &Forecaster{Model: ARIMA{Order: DefaultOrder}}
}

// Forecast fits the model on prices and returns steps daily projections
// starting the day after the last date. Values are not clamped.
func (f *Forecaster) Forecast(dates []time.Time, prices []float64, steps int) (*model.ForecastResult, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidSteps, steps)
	}
	if len(dates) != len(prices) {
		return nil, fmt.Errorf("%w: %d dates for %d prices", model.ErrInvalidSeries, len(dates), len(prices))
	}
	m, err := f.Model.Fit(prices)
	if err != nil {
		return nil, err
	}

	values := m.Predict(steps)
	last := model.Day(dates[len(dates)-1])
	points := make([]model.ForecastPoint, steps)
	for h := range points {
		points[h] = model.ForecastPoint{Date: last.AddDate(0, 0, h+1), Value: values[h]}
	}
	return &model.ForecastResult{
		Points:       points,
		Order:        m.Order,
		AR:           m.AR,
		MA:           m.MA,
		Sigma2:       m.Sigma2,
		Observations: m.Observations,
	}, nil
}

// Forecast runs the default ARIMA(3,1,2) forecaster.
func Forecast(dates []time.Time, prices []float64, steps int) (*model.ForecastResult, error) {
	return New().Forecast(dates, prices, steps)
}
