package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SVMonit/internal/model"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveSelection("7d")
	m.ObserveSelection("7d")
	m.ObserveError(&model.IntervalError{Token: "2w"})
	m.ObserveForecast(20 * time.Millisecond)
	m.SetStorePoints(91)
	m.ObserveReport()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SelectionsTotal.WithLabelValues("7d")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SelectionErrors.WithLabelValues("unknown_interval")))
	assert.Equal(t, 91.0, testutil.ToFloat64(m.StorePoints))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsSent))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ForecastDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSelection("all")
		m.ObserveError(errors.New("x"))
		m.ObserveForecast(time.Second)
		m.SetStorePoints(1)
		m.ObserveReport()
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&model.IntervalError{Token: "x"}, "unknown_interval"},
		{&model.FitError{Order: model.Order{P: 3, D: 1, Q: 2}, Err: errors.New("boom")}, "model_fit"},
		{fmt.Errorf("wrap: %w", model.ErrInvalidSteps), "invalid_steps"},
		{model.ErrInsufficientData, "insufficient_data"},
		{model.ErrInvalidSeries, "invalid_series"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}

func TestServer_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SetStorePoints(5)

	ts := httptest.NewServer(NewServer(":0", reg).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "svmonit_store_points 5")

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"ok"`)
}
