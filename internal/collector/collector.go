package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"SVMonit/internal/model"
	"SVMonit/internal/recorder"
	"SVMonit/internal/series"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Points []model.PricePoint
	Err    error
	End    time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPriceHistory(_ context.Context, days int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Points != nil {
		return m.Points, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now()
	}
	return generateMockHistory(m.Price, days, model.Day(end)), nil
}

func generateMockHistory(basePrice float64, count int, end time.Time) []model.PricePoint {
	points := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.PricePoint{
			Date:  end.AddDate(0, 0, -(count - 1 - i)),
			Price: basePrice * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}

// Collector runs the one-time ingestion that seeds the series store.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Days     int
	Logger   *logrus.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, days int, logger *logrus.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Recorder: rec, Days: days, Logger: logger}
}

// Collect fetches the price history and builds the store from it. When the
// fetch fails, the last recorded history of the same source is used instead.
func (c *Collector) Collect(ctx context.Context) (*series.Store, error) {
	log := c.Logger.WithFields(logrus.Fields{"source": c.Fetcher.Name(), "days": c.Days})

	points, err := c.Fetcher.FetchPriceHistory(ctx, c.Days)
	if err != nil {
		cached, loadErr := c.Recorder.LoadPrices(c.Fetcher.Name())
		if loadErr != nil || len(cached) == 0 {
			if loadErr != nil {
				log.WithError(loadErr).Warn("load recorded history failed")
			}
			return nil, fmt.Errorf("fetch price history: %w", err)
		}
		log.WithError(err).WithField("points", len(cached)).Warn("fetch failed, using recorded history")
		points = cached
	} else if err := c.Recorder.RecordPrices(c.Fetcher.Name(), points); err != nil {
		log.WithError(err).Error("record price history failed")
	}

	store, err := series.Build(points)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	log.WithFields(logrus.Fields{
		"points": store.Len(),
		"first":  store.First().Format(time.DateOnly),
		"last":   store.Last().Format(time.DateOnly),
	}).Info("price history ingested")
	return store, nil
}
