package pipeline

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SVMonit/internal/indicator"
	"SVMonit/internal/metrics"
	"SVMonit/internal/model"
	"SVMonit/internal/series"
)

func buildStore(t *testing.T, n int) *series.Store {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: 60000 + 10*float64(i) + 50*math.Sin(float64(i)/3),
		}
	}
	store, err := series.Build(pts)
	require.NoError(t, err)
	store, err = indicator.Derive(store, indicator.NewSyntheticSource(indicator.DefaultFormula, 7))
	require.NoError(t, err)
	return store
}

type stubForecaster struct {
	mu     sync.Mutex
	calls  int
	prices []float64
	err    error
}

func (s *stubForecaster) Forecast(dates []time.Time, prices []float64, steps int) (*model.ForecastResult, error) {
	s.mu.Lock()
	s.calls++
	s.prices = prices
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	pts := make([]model.ForecastPoint, steps)
	last := dates[len(dates)-1]
	for h := range pts {
		pts[h] = model.ForecastPoint{Date: last.AddDate(0, 0, h+1), Value: prices[len(prices)-1]}
	}
	return &model.ForecastResult{Points: pts, Observations: len(prices)}, nil
}

func TestOnSelection_EndToEnd(t *testing.T) {
	store := buildStore(t, 91)
	logger, hook := test.NewNullLogger()
	c, err := NewCoordinator(store, nil, 0, logger, nil)
	require.NoError(t, err)
	assert.Equal(t, 180, c.Steps())

	sel, err := c.OnSelection("7d")
	require.NoError(t, err)
	assert.NotEqual(t, "", sel.ID.String())
	assert.Equal(t, 7, sel.Interval.Days)
	assert.Equal(t, 8, sel.View.Len())
	assert.Equal(t, store.Last(), sel.View.Last())

	require.Len(t, sel.Forecast.Points, 180)
	assert.Equal(t, store.Last().AddDate(0, 0, 1), sel.Forecast.Points[0].Date)
	assert.Equal(t, store.Last().AddDate(0, 0, 180), sel.Forecast.Points[179].Date)
	assert.Equal(t, 91, sel.Forecast.Observations)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "selection completed", entry.Message)
	assert.Equal(t, sel.ID.String(), entry.Data["selection_id"])
}

func TestOnSelection_All(t *testing.T) {
	store := buildStore(t, 30)
	f := &stubForecaster{}
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, f, 10, logger, nil)
	require.NoError(t, err)

	sel, err := c.OnSelection("all")
	require.NoError(t, err)
	assert.Equal(t, store.Len(), sel.View.Len())
	assert.Len(t, sel.Forecast.Points, 10)
}

func TestOnSelection_ForecastUsesFullHistory(t *testing.T) {
	store := buildStore(t, 60)
	f := &stubForecaster{}
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, f, 5, logger, nil)
	require.NoError(t, err)

	a, err := c.OnSelection("1d")
	require.NoError(t, err)
	assert.Equal(t, store.Prices(), f.prices)
	b, err := c.OnSelection("all")
	require.NoError(t, err)
	assert.Equal(t, store.Prices(), f.prices)
	assert.Equal(t, a.Forecast.Points, b.Forecast.Points)
	assert.NotEqual(t, a.View.Len(), b.View.Len())
}

func TestOnSelection_UnknownToken(t *testing.T) {
	store := buildStore(t, 30)
	f := &stubForecaster{}
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, f, 5, logger, m)
	require.NoError(t, err)

	sel, err := c.OnSelection("2w")
	assert.Nil(t, sel)
	assert.ErrorIs(t, err, model.ErrUnknownInterval)
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectionErrors.WithLabelValues("unknown_interval")))
}

func TestOnSelection_ShortStoreFailsWholeSelection(t *testing.T) {
	store := buildStore(t, 5)
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, nil, 0, logger, nil)
	require.NoError(t, err)

	sel, err := c.OnSelection("7d")
	assert.Nil(t, sel)
	assert.ErrorIs(t, err, model.ErrModelFit)
	var fe *model.FitError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 5, fe.Observations)
}

func TestOnSelection_Metrics(t *testing.T) {
	store := buildStore(t, 30)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, &stubForecaster{}, 5, logger, m)
	require.NoError(t, err)

	_, err = c.OnSelection("30d")
	require.NoError(t, err)
	assert.Equal(t, 30.0, testutil.ToFloat64(m.StorePoints))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectionsTotal.WithLabelValues("30d")))
}

func TestOnSelection_Concurrent(t *testing.T) {
	store := buildStore(t, 40)
	f := &stubForecaster{}
	logger, _ := test.NewNullLogger()
	c, err := NewCoordinator(store, f, 3, logger, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, tok := range model.StandardIntervals {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			_, err := c.OnSelection(tok)
			assert.NoError(t, err)
		}(tok)
	}
	wg.Wait()
	assert.Equal(t, len(model.StandardIntervals), f.calls)
	assert.Equal(t, 40, c.Store().Len())
}

func TestNewCoordinator_RejectsEmpty(t *testing.T) {
	_, err := NewCoordinator(nil, nil, 0, nil, nil)
	assert.Error(t, err)
}
