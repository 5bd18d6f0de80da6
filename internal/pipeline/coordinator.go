// Package pipeline connects window selection to the forecaster.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"SVMonit/internal/forecast"
	"SVMonit/internal/logging"
	"SVMonit/internal/metrics"
	"SVMonit/internal/model"
	"SVMonit/internal/series"
)

// Forecaster produces a forecast from a price history.
type Forecaster interface {
	Forecast(dates []time.Time, prices []float64, steps int) (*model.ForecastResult, error)
}

// Selection is the result of one selection event.
type Selection struct {
	ID       uuid.UUID
	Interval model.Interval
	View     *series.View
	Forecast *model.ForecastResult
}

// Coordinator owns the series store and answers selection events. The store
// is never mutated, so a Coordinator is safe for concurrent use.
type Coordinator struct {
	store      *series.Store
	forecaster Forecaster
	steps      int
	logger     *logrus.Logger
	metrics    *metrics.Metrics
}

// NewCoordinator creates a coordinator over store. A nil forecaster uses the
// default ARIMA forecaster, steps <= 0 uses forecast.DefaultSteps and a nil
// logger discards output.
func NewCoordinator(store *series.Store, f Forecaster, steps int, logger *logrus.Logger, m *metrics.Metrics) (*Coordinator, error) {
	if store == nil || store.Len() == 0 {
		return nil, errors.New("coordinator requires a non-empty store")
	}
	if !store.Has(model.SeriesPrice) {
		return nil, errors.New("store has no price series")
	}
	if f == nil {
		f = forecast.New()
	}
	if steps <= 0 {
		steps = forecast.DefaultSteps
	}
	if logger == nil {
		logger = logging.Discard()
	}
	m.SetStorePoints(store.Len())
	return &Coordinator{
		store:      store,
		forecaster: f,
		steps:      steps,
		logger:     logger,
		metrics:    m,
	}, nil
}

// Store returns the coordinator's store.
func (c *Coordinator) Store() *series.Store { return c.store }

// Steps returns the forecast horizon in days.
func (c *Coordinator) Steps() int { return c.steps }

// OnSelection selects the window named by token and forecasts from the full
// price history. Either both results are returned or an error.
func (c *Coordinator) OnSelection(token string) (*Selection, error) {
	id := uuid.New()
	log := c.logger.WithFields(logrus.Fields{
		"selection_id": id.String(),
		"interval":     token,
	})

	iv, err := series.ParseInterval(token)
	if err != nil {
		c.metrics.ObserveError(err)
		log.WithError(err).Warn("selection rejected")
		return nil, err
	}
	view := c.store.Window(iv)

	start := time.Now()
	fc, err := c.forecaster.Forecast(c.store.Dates(), c.store.Prices(), c.steps)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveError(err)
		log.WithError(err).Error("forecast failed")
		return nil, fmt.Errorf("forecast for %s: %w", iv, err)
	}
	c.metrics.ObserveForecast(elapsed)
	c.metrics.ObserveSelection(iv.String())

	log.WithFields(logrus.Fields{
		"window_points": view.Len(),
		"steps":         len(fc.Points),
		"duration_ms":   elapsed.Milliseconds(),
	}).Info("selection completed")

	return &Selection{
		ID:       id,
		Interval: iv,
		View:     view,
		Forecast: fc,
	}, nil
}
