package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"SVMonit/internal/model"
)

// Metrics holds the Prometheus metrics for selections and forecasts.
type Metrics struct {
	SelectionsTotal  *prometheus.CounterVec // labels: interval
	SelectionErrors  *prometheus.CounterVec // labels: kind
	ForecastDuration prometheus.Histogram
	StorePoints      prometheus.Gauge
	ReportsSent      prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SelectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svmonit_selections_total",
			Help: "Completed window selections by interval token",
		}, []string{"interval"}),
		SelectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "svmonit_selection_errors_total",
			Help: "Failed selections by error kind",
		}, []string{"kind"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "svmonit_forecast_duration_seconds",
			Help:    "ARIMA fit and forecast latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StorePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "svmonit_store_points",
			Help: "Number of daily points in the series store",
		}),
		ReportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "svmonit_reports_sent_total",
			Help: "Reports delivered to Telegram",
		}),
	}
	reg.MustRegister(
		m.SelectionsTotal,
		m.SelectionErrors,
		m.ForecastDuration,
		m.StorePoints,
		m.ReportsSent,
	)
	return m
}

// ObserveSelection counts a completed selection.
func (m *Metrics) ObserveSelection(token string) {
	if m == nil {
		return
	}
	m.SelectionsTotal.WithLabelValues(token).Inc()
}

// ObserveError counts a failed selection, labelled by error kind.
func (m *Metrics) ObserveError(err error) {
	if m == nil || err == nil {
		return
	}
	m.SelectionErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ObserveForecast records the duration of one forecast.
func (m *Metrics) ObserveForecast(d time.Duration) {
	if m == nil {
		return
	}
	m.ForecastDuration.Observe(d.Seconds())
}

// SetStorePoints publishes the store size.
func (m *Metrics) SetStorePoints(n int) {
	if m == nil {
		return
	}
	m.StorePoints.Set(float64(n))
}

// ObserveReport counts a delivered report.
func (m *Metrics) ObserveReport() {
	if m == nil {
		return
	}
	m.ReportsSent.Inc()
}

// ErrorKind maps an error onto a low-cardinality label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownInterval):
		return "unknown_interval"
	case errors.Is(err, model.ErrModelFit):
		return "model_fit"
	case errors.Is(err, model.ErrInvalidSteps):
		return "invalid_steps"
	case errors.Is(err, model.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, model.ErrInvalidSeries):
		return "invalid_series"
	default:
		return "other"
	}
}

// Server exposes /metrics and /healthz.
type Server struct {
	srv     *http.Server
	started time.Time
}

// NewServer creates a metrics server serving the metrics gathered by g.
func NewServer(addr string, g prometheus.Gatherer) *Server {
	s := &Server{started: time.Now()}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealth)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// not reported as an error.
func (s *Server) ListenAndServe() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
